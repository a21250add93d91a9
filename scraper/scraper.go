// Package scraper fetches quote pages and pulls the raw text fragments out of them
package scraper

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"stockscreener/finance"
)

// Default selectors for the MarketWatch quote page
const (
	DefaultKeyValueSelector  = "li.kv__item"
	DefaultPriceCellSelector = "td.table__cell"
)

// ErrNoFragments is returned when a page holds none of the expected elements,
// typically a bot challenge or an unknown ticker page
var ErrNoFragments = errors.New("no quote data found on page")

// Traverser locates the key data list and the performance table in a quote page
type Traverser struct {
	keyValueSelector  string
	priceCellSelector string
}

// NewTraverser creates a traverser; empty selectors fall back to the MarketWatch defaults
func NewTraverser(keyValueSelector, priceCellSelector string) *Traverser {
	if keyValueSelector == "" {
		keyValueSelector = DefaultKeyValueSelector
	}
	if priceCellSelector == "" {
		priceCellSelector = DefaultPriceCellSelector
	}
	return &Traverser{
		keyValueSelector:  keyValueSelector,
		priceCellSelector: priceCellSelector,
	}
}

// Traverse parses the page and returns both fragment sequences in document order
func (t *Traverser) Traverse(content []byte) (finance.Fragments, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return finance.Fragments{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var frags finance.Fragments
	doc.Find(t.keyValueSelector).Each(func(i int, s *goquery.Selection) {
		frags.KeyValues = append(frags.KeyValues, CleanText(s.Text()))
	})
	doc.Find(t.priceCellSelector).Each(func(i int, s *goquery.Selection) {
		frags.PriceCells = append(frags.PriceCells, CleanText(s.Text()))
	})

	if len(frags.KeyValues) == 0 && len(frags.PriceCells) == 0 {
		return frags, ErrNoFragments
	}
	return frags, nil
}

// CleanText removes extra whitespace from text
func CleanText(text string) string {
	// Replace newlines, tabs and non-breaking spaces with spaces
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\t", " ")
	text = strings.ReplaceAll(text, "\u00a0", " ")

	// Replace multiple spaces with a single space
	for strings.Contains(text, "  ") {
		text = strings.ReplaceAll(text, "  ", " ")
	}

	return strings.TrimSpace(text)
}
