package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"stockscreener/browser"
	"stockscreener/config"
	"stockscreener/scraper"
)

func TestConfigPaths(t *testing.T) {
	var paths configPaths
	assert.NoError(t, paths.Set("base.toml"))
	assert.NoError(t, paths.Set("local.toml"))

	assert.Equal(t, configPaths{"base.toml", "local.toml"}, paths)
	assert.Equal(t, "base.toml,local.toml", paths.String())
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STOCKSCREEN_TICKERS", "")

	cfg, err := loadConfig(nil, "ibm, ko", 9300)
	require.NoError(t, err)
	assert.Equal(t, []string{"ibm", "ko"}, cfg.Tickers)
	assert.Equal(t, 9300, cfg.Server.Port)

	cfg, err = loadConfig(nil, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.Port)
}

func TestLoadConfig_ValidatesFlagOverrides(t *testing.T) {
	for _, port := range []int{70000, -1} {
		_, err := loadConfig(nil, "", port)
		assert.ErrorContains(t, err, "invalid configuration")
	}
}

func TestNewFetcher_Modes(t *testing.T) {
	cfg := config.NewDefaultConfig()

	fetcher, cleanup := newFetcher(cfg, arbor.NewLogger())
	cleanup()
	assert.IsType(t, &scraper.HTTPFetcher{}, fetcher)

	cfg.Fetch.Mode = "browser"
	fetcher, cleanup = newFetcher(cfg, arbor.NewLogger())
	cleanup()
	assert.IsType(t, &browser.Pool{}, fetcher)
}

func TestDriverOptions(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Pipeline.Workers = 4
	cfg.Pipeline.StrictLayout = true
	cfg.Screen.MinOneYearPct = 10

	options := driverOptions(cfg)

	assert.Equal(t, 4, options.Workers)
	assert.Equal(t, 30*time.Second, options.Timeout)
	assert.True(t, options.StrictLayout)
	assert.Equal(t, 1e9, options.Criteria.MinMarketCap)
	assert.Equal(t, 10.0, options.Criteria.MinOneYearPct)
}
