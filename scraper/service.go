package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

// Fetcher defaults
const (
	DefaultURLTemplate  = "https://www.marketwatch.com/investing/stock/%s?mod=quote_search"
	DefaultUserAgent    = "Mozilla/5.0 (X11; Linux x86_64; rv:134.0) Gecko/20100101 Firefox/134.0"
	DefaultTimeout      = 30 * time.Second
	DefaultMaxBodyBytes = 8 << 20
)

// Page is the raw result of fetching one ticker's quote page
type Page struct {
	Ticker     string
	URL        string
	StatusCode int
	Content    []byte
}

// OK reports whether the page was served successfully
func (p *Page) OK() bool {
	return p.StatusCode == http.StatusOK
}

// FetcherConfig holds the HTTP fetcher parameters
type FetcherConfig struct {
	URLTemplate       string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxBodyBytes      int64
}

// HTTPFetcher downloads quote pages over plain HTTP
type HTTPFetcher struct {
	client  *http.Client
	config  FetcherConfig
	limiter *rate.Limiter
	logger  arbor.ILogger
}

// NewHTTPFetcher creates a new fetcher; zero config fields take the package defaults
func NewHTTPFetcher(config FetcherConfig, logger arbor.ILogger) *HTTPFetcher {
	if config.URLTemplate == "" {
		config.URLTemplate = DefaultURLTemplate
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}

	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout: config.Timeout,
		},
		config:  config,
		limiter: rate.NewLimiter(limit, config.Burst),
		logger:  logger,
	}
}

// BuildURL creates the quote page URL for ticker
func (f *HTTPFetcher) BuildURL(ticker string) string {
	return fmt.Sprintf(f.config.URLTemplate, url.PathEscape(ticker))
}

// Fetch downloads the quote page for ticker. A non-200 response is not an error;
// it is reported through Page.StatusCode with no content.
func (f *HTTPFetcher) Fetch(ctx context.Context, ticker string) (*Page, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	pageURL := f.BuildURL(ticker)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br, zstd")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Sec-Fetch-User", "?1")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Cache-Control", "no-cache")

	f.logger.Debug().Str("ticker", ticker).Str("url", pageURL).Msg("Requesting quote page")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	page := &Page{
		Ticker:     ticker,
		URL:        pageURL,
		StatusCode: resp.StatusCode,
	}
	if !page.OK() {
		return page, nil
	}

	body, err := f.readBody(resp)
	if err != nil {
		return nil, err
	}
	page.Content = body

	f.logger.Debug().
		Str("ticker", ticker).
		Int("bytes", len(body)).
		Str("encoding", resp.Header.Get("Content-Encoding")).
		Msg("Quote page received")

	return page, nil
}

// readBody decodes the response according to its Content-Encoding and enforces the size cap
func (f *HTTPFetcher) readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzipReader.Close()
		reader = gzipReader
	case "deflate":
		flateReader := flate.NewReader(resp.Body)
		defer flateReader.Close()
		reader = flateReader
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "zstd":
		zstdReader, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer zstdReader.Close()
		reader = zstdReader
	default:
		reader = resp.Body
	}

	body, err := io.ReadAll(io.LimitReader(reader, f.config.MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > f.config.MaxBodyBytes {
		return nil, fmt.Errorf("response body exceeds %d bytes", f.config.MaxBodyBytes)
	}
	return body, nil
}
