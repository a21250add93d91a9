package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"stockscreener/api"
	"stockscreener/browser"
	"stockscreener/config"
	"stockscreener/pipeline"
	"stockscreener/scraper"
	"stockscreener/stock"
	"stockscreener/tickers"
	"stockscreener/utils"
)

// configPaths allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return strings.Join(*c, ",")
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles configPaths
	tickerList  = flag.String("tickers", "", "Comma separated tickers to screen, dow30 or nasdaq100 (overrides config)")
	serve       = flag.Bool("serve", false, "Run the HTTP API instead of a single batch")
	serverPort  = flag.Int("port", 0, "Server port (overrides config)")
)

func main() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Parse()

	cfg, err := loadConfig(configFiles, *tickerList, *serverPort)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := utils.SetupLogger(cfg.Logging)

	fetcher, cleanup := newFetcher(cfg, logger)
	defer cleanup()

	driver := pipeline.NewDriver(
		fetcher,
		scraper.NewTraverser(cfg.Fetch.KeyValueSelector, cfg.Fetch.PriceCellSelector),
		driverOptions(cfg),
		logger,
	)

	if *serve {
		if err := runServer(cfg, driver, logger); err != nil {
			logger.Error().Err(err).Msg("Server stopped")
			os.Exit(1)
		}
		return
	}

	runBatch(driver, tickers.Resolve(cfg.Tickers))
}

// loadConfig applies flag overrides on top of files and env, then validates the result
func loadConfig(paths []string, tickerOverride string, portOverride int) (*config.Config, error) {
	cfg, err := config.LoadFromFiles(paths...)
	if err != nil {
		return nil, err
	}

	if tickerOverride != "" {
		cfg.Tickers = config.SplitList(tickerOverride)
	}
	if portOverride != 0 {
		cfg.Server.Port = portOverride
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newFetcher picks the page fetcher for the configured mode
func newFetcher(cfg *config.Config, logger arbor.ILogger) (pipeline.PageFetcher, func()) {
	if cfg.Fetch.Mode == "browser" {
		pool := browser.New(browser.Config{
			Size:        cfg.Browser.PoolSize,
			UserAgent:   cfg.Fetch.UserAgent,
			SettleTime:  cfg.BrowserSettleTime(),
			URLTemplate: cfg.Fetch.URLTemplate,
		}, logger)
		return pool, pool.Shutdown
	}

	fetcher := scraper.NewHTTPFetcher(scraper.FetcherConfig{
		URLTemplate:       cfg.Fetch.URLTemplate,
		UserAgent:         cfg.Fetch.UserAgent,
		Timeout:           cfg.FetchTimeout(),
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
		Burst:             cfg.Fetch.Burst,
		MaxBodyBytes:      cfg.Fetch.MaxBodyBytes,
	}, logger)
	return fetcher, func() {}
}

func driverOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		Workers:      cfg.Pipeline.Workers,
		Timeout:      cfg.FetchTimeout(),
		StrictLayout: cfg.Pipeline.StrictLayout,
		Criteria: stock.Criteria{
			MinMarketCap:  cfg.Screen.MinMarketCap,
			MinPERatio:    cfg.Screen.MinPERatio,
			MinOneYearPct: cfg.Screen.MinOneYearPct,
		},
	}
}

func runBatch(driver *pipeline.Driver, symbols []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result := driver.Run(ctx, symbols)

	for _, record := range result.All {
		fmt.Printf("%+v\n", record)
	}
	fmt.Println()
	for _, record := range result.WatchList {
		fmt.Println(record.Summary())
	}
	fmt.Println(result.Summary())
}

func runServer(cfg *config.Config, driver *pipeline.Driver, logger arbor.ILogger) error {
	handler := api.NewHandler(driver, cfg.Tickers, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Server is running")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
