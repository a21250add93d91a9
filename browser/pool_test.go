package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"stockscreener/scraper"
)

func TestNew_Defaults(t *testing.T) {
	pool := New(Config{}, arbor.NewLogger())

	assert.Equal(t, 1, pool.config.Size)
	assert.Equal(t, scraper.DefaultUserAgent, pool.config.UserAgent)
	assert.Equal(t, scraper.DefaultURLTemplate, pool.config.URLTemplate)
	assert.Equal(t, 1, cap(pool.contexts))
}

func TestShutdown_BeforeUseIsSafe(t *testing.T) {
	pool := New(Config{Size: 2}, arbor.NewLogger())
	pool.Shutdown()
	pool.Shutdown()
	assert.True(t, pool.closed)
}

// Needs a local Chrome; enable with STOCKSCREEN_BROWSER_TESTS=1
func TestPool_FetchRendersPage(t *testing.T) {
	if os.Getenv("STOCKSCREEN_BROWSER_TESTS") == "" {
		t.Skip("set STOCKSCREEN_BROWSER_TESTS=1 to run headless Chrome tests")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><ul><li class="kv__item">Open $1.00</li></ul></body></html>`))
	}))
	defer server.Close()

	pool := New(Config{Size: 1, URLTemplate: server.URL + "/%s"}, arbor.NewLogger())
	defer pool.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	page, err := pool.Fetch(ctx, "AAPL")
	require.NoError(t, err)
	assert.True(t, page.OK())

	frags, err := scraper.NewTraverser("", "").Traverse(page.Content)
	require.NoError(t, err)
	assert.Equal(t, []string{"Open $1.00"}, frags.KeyValues)
}
