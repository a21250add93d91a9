package stock

import (
	"fmt"

	"stockscreener/notation"
)

// Record holds the snapshot data scraped for one ticker plus its classification flags
type Record struct {
	Ticker string `json:"ticker"`

	// Price fields
	DayOpen          notation.Value `json:"day_open"`
	DayRangeLow      notation.Value `json:"day_range_low"`
	DayRangeHigh     notation.Value `json:"day_range_high"`
	FiftyTwoWeekLow  notation.Value `json:"fiftytwo_week_low"`
	FiftyTwoWeekHigh notation.Value `json:"fiftytwo_week_high"`
	Dividend         notation.Value `json:"dividend"`
	EPS              notation.Value `json:"eps"`

	// Scale fields
	MarketCap         notation.Value `json:"market_cap"`
	SharesOutstanding notation.Value `json:"shares_outstanding"`
	PublicFloat       notation.Value `json:"public_float"`
	RevPerEmployee    notation.Value `json:"rev_per_employee"`
	ShortInterest     notation.Value `json:"short_interest"`
	AvgVolume         notation.Value `json:"avg_volume"`

	// Ratio and percent fields
	Beta                notation.Value `json:"beta"`
	PERatio             notation.Value `json:"pe_ratio"`
	StockYieldPct       notation.Value `json:"stock_yield_pct"`
	PercentFloatShorted notation.Value `json:"percent_float_shorted"`
	FiveDayPct          notation.Value `json:"five_day_pct"`
	OneMonthPct         notation.Value `json:"one_month_pct"`
	ThreeMonthPct       notation.Value `json:"three_month_pct"`
	YTDPct              notation.Value `json:"ytd_pct"`
	OneYearPct          notation.Value `json:"one_year_pct"`

	ExDividendDate string `json:"ex_dividend_date"`

	OnWatchList bool `json:"on_watch_list"`
	// Reserved for future rules, never set by Classify
	IsGrowth bool `json:"is_growth"`
	IsValue  bool `json:"is_value"`
	IsBuy    bool `json:"is_buy"`
	IsSell   bool `json:"is_sell"`
}

// Summary returns the one line watch list presentation
func (r Record) Summary() string {
	return fmt.Sprintf("%s | MKT CAP: %s | YTD: %s", r.Ticker, r.MarketCap, r.YTDPct)
}
