package scraper

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"stockscreener/finance"
)

func loadFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/quote.html")
	require.NoError(t, err)
	return data
}

func TestTraverser_QuotePage(t *testing.T) {
	frags, err := NewTraverser("", "").Traverse(loadFixture(t))
	require.NoError(t, err)

	require.Len(t, frags.KeyValues, 16)
	assert.Equal(t, "Open $171.76", frags.KeyValues[0])
	assert.Equal(t, "Day Range 123.40 - 130.00", frags.KeyValues[1])
	assert.Equal(t, "% of Float Shorted 0.66%", frags.KeyValues[14])

	require.Len(t, frags.PriceCells, 52)
	assert.Equal(t, "5 Day", frags.PriceCells[42])
	assert.Equal(t, "1.12%", frags.PriceCells[43])
	assert.Equal(t, "35.50%", frags.PriceCells[51])
}

func TestTraverser_FeedsExtractor(t *testing.T) {
	frags, err := NewTraverser("", "").Traverse(loadFixture(t))
	require.NoError(t, err)

	record, err := finance.Extract("AAPL", frags)
	require.NoError(t, err)

	marketCap, ok := record.MarketCap.Get()
	require.True(t, ok)
	assert.Equal(t, 2_670_000_000_000.0, marketCap)

	oneMonth, ok := record.OneMonthPct.Get()
	require.True(t, ok)
	assert.Equal(t, -2.30, oneMonth)
	assert.Equal(t, "Feb 9, 2024", record.ExDividendDate)
}

func TestTraverser_NoFragments(t *testing.T) {
	_, err := NewTraverser("", "").Traverse([]byte("<html><body><p>Please verify you are a human</p></body></html>"))
	assert.ErrorIs(t, err, ErrNoFragments)
}

func TestTraverser_CustomSelectors(t *testing.T) {
	html := `<dl><dt class="kv">Open  $1.00</dt></dl><table><tr><td class="cell">YTD</td><td class="cell">2%</td></tr></table>`
	frags, err := NewTraverser("dt.kv", "td.cell").Traverse([]byte(html))
	require.NoError(t, err)
	assert.Equal(t, []string{"Open $1.00"}, frags.KeyValues)
	assert.Equal(t, []string{"YTD", "2%"}, frags.PriceCells)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Open $171.76", CleanText("\n  Open\n\t\t$171.76\r\n "))
	assert.Equal(t, "Market Cap $2.67T", CleanText("Market Cap   $2.67T"))
	assert.Equal(t, "", CleanText(" \n\t "))
}

func newTestFetcher(serverURL string, config FetcherConfig) *HTTPFetcher {
	config.URLTemplate = serverURL + "/investing/stock/%s"
	return NewHTTPFetcher(config, arbor.NewLogger())
}

func encode(t *testing.T, encoding string, body []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	switch encoding {
	case "gzip":
		w := gzip.NewWriter(&buf)
		_, err := w.Write(body)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case "deflate":
		w, err := flate.NewWriter(&buf, flate.DefaultCompression)
		require.NoError(t, err)
		_, err = w.Write(body)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case "br":
		w := brotli.NewWriter(&buf)
		_, err := w.Write(body)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case "zstd":
		enc, err := zstd.NewWriter(nil)
		require.NoError(t, err)
		return enc.EncodeAll(body, nil)
	default:
		return body
	}
	return buf.Bytes()
}

func TestHTTPFetcher_ContentEncodings(t *testing.T) {
	page := loadFixture(t)

	for _, encoding := range []string{"", "gzip", "deflate", "br", "zstd"} {
		t.Run("encoding="+encoding, func(t *testing.T) {
			payload := encode(t, encoding, page)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/investing/stock/AAPL", r.URL.Path)
				assert.Equal(t, "gzip, deflate, br, zstd", r.Header.Get("Accept-Encoding"))
				assert.NotEmpty(t, r.Header.Get("User-Agent"))
				if encoding != "" {
					w.Header().Set("Content-Encoding", encoding)
				}
				w.Write(payload)
			}))
			defer server.Close()

			got, err := newTestFetcher(server.URL, FetcherConfig{}).Fetch(context.Background(), "AAPL")
			require.NoError(t, err)
			assert.True(t, got.OK())
			assert.Equal(t, "AAPL", got.Ticker)
			assert.Equal(t, page, got.Content)
		})
	}
}

func TestHTTPFetcher_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusUnauthorized)
	}))
	defer server.Close()

	got, err := newTestFetcher(server.URL, FetcherConfig{}).Fetch(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.False(t, got.OK())
	assert.Equal(t, http.StatusUnauthorized, got.StatusCode)
	assert.Empty(t, got.Content)
}

func TestHTTPFetcher_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	serverURL := server.URL
	server.Close()

	_, err := newTestFetcher(serverURL, FetcherConfig{}).Fetch(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestHTTPFetcher_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer server.Close()

	_, err := newTestFetcher(server.URL, FetcherConfig{MaxBodyBytes: 1024}).Fetch(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 1024 bytes")
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	_, err := newTestFetcher(server.URL, FetcherConfig{Timeout: 50 * time.Millisecond}).Fetch(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestHTTPFetcher_RateLimitHonoursContext(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL, FetcherConfig{RequestsPerSecond: 0.01, Burst: 1})

	_, err := fetcher.Fetch(context.Background(), "AAPL")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = fetcher.Fetch(ctx, "MSFT")
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestHTTPFetcher_BuildURL(t *testing.T) {
	fetcher := NewHTTPFetcher(FetcherConfig{}, arbor.NewLogger())
	assert.Equal(t, "https://www.marketwatch.com/investing/stock/BRK.B?mod=quote_search", fetcher.BuildURL("BRK.B"))
	assert.Equal(t, "https://www.marketwatch.com/investing/stock/A%2FB?mod=quote_search", fetcher.BuildURL("A/B"))
}
