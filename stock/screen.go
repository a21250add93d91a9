// Package stock defines the per-ticker record and the watch list rule applied to it
package stock

// Criteria are the thresholds a record must exceed to join the watch list
type Criteria struct {
	MinMarketCap  float64
	MinPERatio    float64
	MinOneYearPct float64
}

// DefaultCriteria holds the stock watch list thresholds
var DefaultCriteria = Criteria{
	MinMarketCap:  1_000_000_000,
	MinPERatio:    1,
	MinOneYearPct: 20,
}

// Classify applies DefaultCriteria
func Classify(r Record) Record {
	return DefaultCriteria.Classify(r)
}

// Classify returns r with OnWatchList set. Every check fails when its field is missing.
func (c Criteria) Classify(r Record) Record {
	r.OnWatchList = c.matches(r)
	return r
}

func (c Criteria) matches(r Record) bool {
	if !r.MarketCap.Gt(c.MinMarketCap) {
		return false
	}

	low, okLow := r.FiftyTwoWeekLow.Get()
	high, okHigh := r.FiftyTwoWeekHigh.Get()
	if !okLow || !okHigh || !r.DayOpen.Gt((low+high)/2) {
		return false
	}

	if !r.PERatio.Gt(c.MinPERatio) {
		return false
	}

	return r.OneYearPct.Gt(c.MinOneYearPct)
}
