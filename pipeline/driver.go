// Package pipeline runs fetch, extraction and screening over a batch of tickers
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"stockscreener/finance"
	"stockscreener/scraper"
	"stockscreener/stock"
)

// ErrEmptyTicker is returned for blank ticker symbols
var ErrEmptyTicker = errors.New("empty ticker symbol")

// StatusError reports a quote page served with a non-success status
type StatusError struct {
	Ticker     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: received non-200 status code: %d", e.Ticker, e.StatusCode)
}

// PageFetcher retrieves the raw quote page for a ticker
type PageFetcher interface {
	Fetch(ctx context.Context, ticker string) (*scraper.Page, error)
}

// FragmentTraverser splits raw page content into the two fragment sequences
type FragmentTraverser interface {
	Traverse(content []byte) (finance.Fragments, error)
}

// Options tune a Driver
type Options struct {
	// Workers bounds how many tickers are processed at once
	Workers int
	// Timeout applies to each ticker's fetch; zero means none
	Timeout time.Duration
	// StrictLayout skips tickers whose page is missing expected labels
	StrictLayout bool
	Criteria     stock.Criteria
}

// DefaultOptions processes one ticker at a time with the default screening thresholds
func DefaultOptions() Options {
	return Options{
		Workers:  1,
		Timeout:  30 * time.Second,
		Criteria: stock.DefaultCriteria,
	}
}

// Driver orchestrates the per-ticker pipeline
type Driver struct {
	fetcher   PageFetcher
	traverser FragmentTraverser
	options   Options
	logger    arbor.ILogger
}

// NewDriver creates a new pipeline driver
func NewDriver(fetcher PageFetcher, traverser FragmentTraverser, options Options, logger arbor.ILogger) *Driver {
	if options.Workers <= 0 {
		options.Workers = 1
	}
	return &Driver{
		fetcher:   fetcher,
		traverser: traverser,
		options:   options,
		logger:    logger,
	}
}

// Failure records a ticker that produced no record
type Failure struct {
	Ticker string
	Err    error
}

// Result is the outcome of a batch, in input order
type Result struct {
	All       []stock.Record
	WatchList []stock.Record
	Failures  []Failure
}

// Summary returns the watch list count line
func (r *Result) Summary() string {
	return fmt.Sprintf("%d of %d on watch list", len(r.WatchList), len(r.All))
}

type outcome struct {
	record stock.Record
	err    error
}

// Run processes every ticker and partitions the records. A failing ticker is
// logged and skipped; it never aborts the batch.
func (d *Driver) Run(ctx context.Context, tickers []string) *Result {
	outcomes := make([]outcome, len(tickers))

	var g errgroup.Group
	g.SetLimit(d.options.Workers)
	for i, ticker := range tickers {
		g.Go(func() error {
			record, err := d.Process(ctx, ticker)
			outcomes[i] = outcome{record: record, err: err}
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{}
	for i, o := range outcomes {
		if o.err != nil {
			d.logger.Warn().Str("ticker", tickers[i]).Err(o.err).Msg("Skipping ticker")
			result.Failures = append(result.Failures, Failure{Ticker: tickers[i], Err: o.err})
			continue
		}
		result.All = append(result.All, o.record)
		if o.record.OnWatchList {
			result.WatchList = append(result.WatchList, o.record)
		}
	}

	d.logger.Info().
		Int("tickers", len(tickers)).
		Int("records", len(result.All)).
		Int("watch_list", len(result.WatchList)).
		Int("failures", len(result.Failures)).
		Msg("Batch complete")

	return result
}

// Process runs fetch, traversal, extraction and classification for one ticker
func (d *Driver) Process(ctx context.Context, ticker string) (stock.Record, error) {
	if strings.TrimSpace(ticker) == "" {
		return stock.Record{}, ErrEmptyTicker
	}
	if err := ctx.Err(); err != nil {
		return stock.Record{}, err
	}

	page, err := d.fetch(ctx, ticker)
	if err != nil {
		return stock.Record{}, err
	}

	frags, err := d.traverser.Traverse(page.Content)
	if err != nil {
		return stock.Record{}, fmt.Errorf("reading %s page: %w", ticker, err)
	}

	record, err := finance.Extract(ticker, frags)
	if err != nil {
		if d.options.StrictLayout {
			return stock.Record{}, err
		}
		d.logger.Warn().Str("ticker", ticker).Err(err).Msg("Page layout differs from expected, affected fields left empty")
	}

	record = d.options.Criteria.Classify(record)

	d.logger.Debug().
		Str("ticker", ticker).
		Bool("watch_list", record.OnWatchList).
		Msg("Ticker processed")

	return record, nil
}

func (d *Driver) fetch(ctx context.Context, ticker string) (*scraper.Page, error) {
	if d.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.options.Timeout)
		defer cancel()
	}

	page, err := d.fetcher.Fetch(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", ticker, err)
	}
	if !page.OK() {
		return nil, &StatusError{Ticker: ticker, StatusCode: page.StatusCode}
	}
	return page, nil
}
