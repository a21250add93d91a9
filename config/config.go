package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application settings
type Config struct {
	Tickers  []string       `toml:"tickers"`
	Server   ServerConfig   `toml:"server"`
	Fetch    FetchConfig    `toml:"fetch"`
	Browser  BrowserConfig  `toml:"browser"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Screen   ScreenConfig   `toml:"screen"`
	Logging  LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	Port int `toml:"port" validate:"min=1,max=65535"`
}

// FetchConfig controls how quote pages are retrieved
type FetchConfig struct {
	Mode              string  `toml:"mode" validate:"oneof=http browser"` // "http" or "browser" (headless Chrome)
	URLTemplate       string  `toml:"url_template" validate:"required,contains=%s"`
	UserAgent         string  `toml:"user_agent"`
	Timeout           string  `toml:"timeout" validate:"duration"`          // e.g. "30s"
	RequestsPerSecond float64 `toml:"requests_per_second" validate:"gte=0"` // 0 disables throttling
	Burst             int     `toml:"burst" validate:"gte=0"`
	MaxBodyBytes      int64   `toml:"max_body_bytes" validate:"gte=0"`

	// Selectors for the two page regions
	KeyValueSelector  string `toml:"key_value_selector"`
	PriceCellSelector string `toml:"price_cell_selector"`
}

type BrowserConfig struct {
	PoolSize   int    `toml:"pool_size" validate:"min=1"`
	SettleTime string `toml:"settle_time" validate:"duration"` // wait after navigation before reading the DOM
}

type PipelineConfig struct {
	Workers      int  `toml:"workers" validate:"min=1"`
	StrictLayout bool `toml:"strict_layout"` // skip tickers whose page is missing expected labels
}

// ScreenConfig holds the watch list thresholds
type ScreenConfig struct {
	MinMarketCap  float64 `toml:"min_market_cap"`
	MinPERatio    float64 `toml:"min_pe_ratio"`
	MinOneYearPct float64 `toml:"min_one_year_pct"`
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=trace debug info warn error"`
	Output []string `toml:"output" validate:"dive,oneof=stdout console file"`
	File   string   `toml:"file"`
}

// NewDefaultConfig returns the built-in configuration
func NewDefaultConfig() *Config {
	return &Config{
		Tickers: []string{"AAPL", "AMZN", "MSFT"},
		Server: ServerConfig{
			Port: 8000,
		},
		Fetch: FetchConfig{
			Mode:              "http",
			URLTemplate:       "https://www.marketwatch.com/investing/stock/%s?mod=quote_search",
			Timeout:           "30s",
			RequestsPerSecond: 1,
			Burst:             1,
			MaxBodyBytes:      8 << 20,
			KeyValueSelector:  "li.kv__item",
			PriceCellSelector: "td.table__cell",
		},
		Browser: BrowserConfig{
			PoolSize:   2,
			SettleTime: "1s",
		},
		Pipeline: PipelineConfig{
			Workers: 1,
		},
		Screen: ScreenConfig{
			MinMarketCap:  1_000_000_000,
			MinPERatio:    1,
			MinOneYearPct: 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
			File:   "logs/stockscreener.log",
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("duration", isDuration); err != nil {
		return err
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func isDuration(fl validator.FieldLevel) bool {
	_, err := time.ParseDuration(fl.Field().String())
	return err == nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if tickers := os.Getenv("STOCKSCREEN_TICKERS"); tickers != "" {
		config.Tickers = SplitList(tickers)
	}
	if mode := os.Getenv("STOCKSCREEN_FETCH_MODE"); mode != "" {
		config.Fetch.Mode = mode
	}
	if urlTemplate := os.Getenv("STOCKSCREEN_URL_TEMPLATE"); urlTemplate != "" {
		config.Fetch.URLTemplate = urlTemplate
	}
	if timeout := os.Getenv("STOCKSCREEN_FETCH_TIMEOUT"); timeout != "" {
		config.Fetch.Timeout = timeout
	}
	if rps := os.Getenv("STOCKSCREEN_REQUESTS_PER_SECOND"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			config.Fetch.RequestsPerSecond = v
		}
	}
	if workers := os.Getenv("STOCKSCREEN_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil {
			config.Pipeline.Workers = w
		}
	}
	if strict := os.Getenv("STOCKSCREEN_STRICT_LAYOUT"); strict != "" {
		if b, err := strconv.ParseBool(strict); err == nil {
			config.Pipeline.StrictLayout = b
		}
	}
	if level := os.Getenv("STOCKSCREEN_LOG_LEVEL"); level != "" {
		config.Logging.Level = strings.ToLower(level)
	}
	if output := os.Getenv("STOCKSCREEN_LOG_OUTPUT"); output != "" {
		config.Logging.Output = SplitList(output)
	}
}

// SplitList splits a comma separated list, dropping blanks
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// FetchTimeout returns the parsed fetch timeout
func (c *Config) FetchTimeout() time.Duration {
	return parseDuration(c.Fetch.Timeout)
}

// BrowserSettleTime returns the parsed browser settle time
func (c *Config) BrowserSettleTime() time.Duration {
	return parseDuration(c.Browser.SettleTime)
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
