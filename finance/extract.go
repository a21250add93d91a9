// Package finance turns the raw text fragments of a quote page into a typed stock record
package finance

import (
	"fmt"
	"strings"

	"stockscreener/stock"
)

// Fragments are the two ordered text sequences scraped from a quote page
type Fragments struct {
	// KeyValues holds one "Label value" entry per item of the key data list
	KeyValues []string
	// PriceCells holds the flat cell list of the performance table
	PriceCells []string
}

// LayoutError lists the labels that could not be found anywhere in the fragments
type LayoutError struct {
	Ticker string
	Labels []string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("page layout mismatch for %s: labels not found: %s", e.Ticker, strings.Join(e.Labels, ", "))
}

// Extract builds a record for ticker from the scraped fragments. Fields that cannot be
// found or decoded are left missing. The returned error, if any, is a *LayoutError and
// the record is populated either way.
func Extract(ticker string, frags Fragments) (stock.Record, error) {
	record := stock.Record{Ticker: ticker}
	var missing []string

	for _, f := range summaryFields {
		fragment, ok := findKeyValue(frags.KeyValues, f.index, f.label)
		if !ok {
			missing = append(missing, f.label)
			continue
		}
		f.assign(&record, valueOf(fragment, f.label))
	}

	for _, f := range performanceFields {
		cell, ok := findCell(frags.PriceCells, f.index, f.label)
		if !ok {
			missing = append(missing, f.label)
			continue
		}
		f.assign(&record, cell)
	}

	if len(missing) > 0 {
		return record, &LayoutError{Ticker: ticker, Labels: missing}
	}
	return record, nil
}

// findKeyValue returns the fragment at index when it carries label, otherwise the
// first fragment anywhere that does
func findKeyValue(fragments []string, index int, label string) (string, bool) {
	if index < len(fragments) && hasLabel(fragments[index], label) {
		return fragments[index], true
	}
	for _, fragment := range fragments {
		if hasLabel(fragment, label) {
			return fragment, true
		}
	}
	return "", false
}

// findCell returns the value cell at index when the cell before it is label,
// otherwise the cell following the first cell equal to label
func findCell(cells []string, index int, label string) (string, bool) {
	if index > 0 && index < len(cells) && isLabel(cells[index-1], label) {
		return cells[index], true
	}
	for i := 0; i < len(cells)-1; i++ {
		if isLabel(cells[i], label) {
			return cells[i+1], true
		}
	}
	return "", false
}

func hasLabel(fragment, label string) bool {
	if !strings.HasPrefix(fragment, label) {
		return false
	}
	rest := fragment[len(label):]
	return rest == "" || rest[0] == ' '
}

func isLabel(cell, label string) bool {
	return strings.EqualFold(strings.TrimSpace(cell), label)
}

// valueOf strips the label and any currency sign, ie. "Open $171.76" -> "171.76"
func valueOf(fragment, label string) string {
	return trimCurrency(strings.TrimPrefix(fragment, label))
}
