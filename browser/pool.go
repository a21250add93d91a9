// Package browser provides a headless Chrome fetcher for quote pages that need JavaScript
package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"stockscreener/scraper"
)

// Config holds browser pool parameters
type Config struct {
	Size        int
	UserAgent   string
	SettleTime  time.Duration
	URLTemplate string
}

// Pool manages a fixed set of browser tabs for reuse
type Pool struct {
	config      Config
	contexts    chan context.Context
	cancelFuncs []context.CancelFunc
	allocCancel context.CancelFunc
	initOnce    sync.Once
	initErr     error
	mu          sync.Mutex
	closed      bool
	logger      arbor.ILogger
}

// New creates a new browser pool. Browsers start lazily on first use.
func New(config Config, logger arbor.ILogger) *Pool {
	if config.Size <= 0 {
		config.Size = 1
	}
	if config.UserAgent == "" {
		config.UserAgent = scraper.DefaultUserAgent
	}
	if config.URLTemplate == "" {
		config.URLTemplate = scraper.DefaultURLTemplate
	}
	return &Pool{
		config:   config,
		contexts: make(chan context.Context, config.Size),
		logger:   logger,
	}
}

// initialize starts the shared allocator and one tab per pool slot
func (pool *Pool) initialize() error {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(pool.config.UserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	pool.allocCancel = allocCancel

	var lastErr error
	for i := 0; i < pool.config.Size; i++ {
		ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...interface{}) {
			// Silent logging
		}))

		// Start the browser in advance
		if err := chromedp.Run(ctx, chromedp.Navigate("about:blank")); err != nil {
			lastErr = err
			pool.logger.Warn().Err(err).Int("browser_index", i).Msg("Failed to start browser")
			cancel()
			continue
		}

		pool.contexts <- ctx
		pool.cancelFuncs = append(pool.cancelFuncs, cancel)
	}

	if len(pool.cancelFuncs) == 0 {
		allocCancel()
		return fmt.Errorf("failed to start any browser: %w", lastErr)
	}

	pool.logger.Info().
		Int("browsers", len(pool.cancelFuncs)).
		Int("requested", pool.config.Size).
		Msg("Browser pool initialized")
	return nil
}

// acquire waits for a free tab and returns it with a release function
func (pool *Pool) acquire(ctx context.Context) (context.Context, func(), error) {
	pool.initOnce.Do(func() {
		pool.initErr = pool.initialize()
	})
	if pool.initErr != nil {
		return nil, nil, pool.initErr
	}

	select {
	case tab := <-pool.contexts:
		release := func() {
			// Clear state before handing the tab back
			refreshCtx, cancel := context.WithTimeout(tab, 3*time.Second)
			defer cancel()
			_ = chromedp.Run(refreshCtx,
				network.ClearBrowserCookies(),
				chromedp.Navigate("about:blank"),
			)
			pool.contexts <- tab
		}
		return tab, release, nil
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("timeout getting browser from pool: %w", ctx.Err())
	}
}

// FetchURL navigates to a URL and returns the rendered HTML
func (pool *Pool) FetchURL(ctx context.Context, pageURL string) (string, error) {
	tab, release, err := pool.acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get browser context: %w", err)
	}
	defer release()

	// Tie the tab's run to the caller's deadline
	runCtx, cancel := context.WithCancel(tab)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var htmlContent string
	err = chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(pool.config.SettleTime),
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL content: %w", err)
	}

	return htmlContent, nil
}

// Fetch implements the page fetcher used by the pipeline. A completed navigation is reported as 200.
func (pool *Pool) Fetch(ctx context.Context, ticker string) (*scraper.Page, error) {
	pageURL := fmt.Sprintf(pool.config.URLTemplate, url.PathEscape(ticker))

	pool.logger.Debug().Str("ticker", ticker).Str("url", pageURL).Msg("Rendering quote page")

	html, err := pool.FetchURL(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	return &scraper.Page{
		Ticker:     ticker,
		URL:        pageURL,
		StatusCode: http.StatusOK,
		Content:    []byte(html),
	}, nil
}

// Shutdown closes all browser instances
func (pool *Pool) Shutdown() {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	if pool.closed {
		return
	}
	pool.closed = true

	for _, cancel := range pool.cancelFuncs {
		cancel()
	}
	pool.cancelFuncs = nil

	if pool.allocCancel != nil {
		pool.allocCancel()
	}

	pool.logger.Info().Msg("Browser pool shut down")
}
