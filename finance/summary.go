package finance

import (
	"strings"

	"stockscreener/notation"
	"stockscreener/stock"
)

// Labels of the key-value list, in page order
const (
	LabelOpen              = "Open"
	LabelDayRange          = "Day Range"
	LabelFiftyTwoWeekRange = "52 Week Range"
	LabelMarketCap         = "Market Cap"
	LabelSharesOutstanding = "Shares Outstanding"
	LabelPublicFloat       = "Public Float"
	LabelBeta              = "Beta"
	LabelRevPerEmployee    = "Rev. per Employee"
	LabelPERatio           = "P/E Ratio"
	LabelEPS               = "EPS"
	LabelYield             = "Yield"
	LabelDividend          = "Dividend"
	LabelExDividendDate    = "Ex-Dividend Date"
	LabelShortInterest     = "Short Interest"
	LabelFloatShorted      = "% of Float Shorted"
	LabelAverageVolume     = "Average Volume"
)

// Labels of the performance table
const (
	LabelFiveDay    = "5 Day"
	LabelOneMonth   = "1 Month"
	LabelThreeMonth = "3 Month"
	LabelYTD        = "YTD"
	LabelOneYear    = "1 Year"
)

type summaryField struct {
	index  int
	label  string
	assign func(r *stock.Record, value string)
}

// summaryFields maps each key-value fragment to the record
var summaryFields = []summaryField{
	{0, LabelOpen, func(r *stock.Record, v string) { r.DayOpen = notation.DecodeFloat(v) }},
	{1, LabelDayRange, func(r *stock.Record, v string) { r.DayRangeLow, r.DayRangeHigh = decodeRange(v) }},
	{2, LabelFiftyTwoWeekRange, func(r *stock.Record, v string) { r.FiftyTwoWeekLow, r.FiftyTwoWeekHigh = decodeRange(v) }},
	{3, LabelMarketCap, func(r *stock.Record, v string) { r.MarketCap = notation.DecodeScaled(v) }},
	{4, LabelSharesOutstanding, func(r *stock.Record, v string) { r.SharesOutstanding = notation.DecodeScaled(v) }},
	{5, LabelPublicFloat, func(r *stock.Record, v string) { r.PublicFloat = notation.DecodeScaled(v) }},
	{6, LabelBeta, func(r *stock.Record, v string) { r.Beta = notation.DecodeFloat(v) }},
	{7, LabelRevPerEmployee, func(r *stock.Record, v string) { r.RevPerEmployee = notation.DecodeScaled(v) }},
	{8, LabelPERatio, func(r *stock.Record, v string) { r.PERatio = notation.DecodeFloat(v) }},
	{9, LabelEPS, func(r *stock.Record, v string) { r.EPS = notation.DecodeFloat(v) }},
	{10, LabelYield, func(r *stock.Record, v string) { r.StockYieldPct = notation.DecodePercent(v) }},
	{11, LabelDividend, func(r *stock.Record, v string) { r.Dividend = notation.DecodeFloat(v) }},
	{12, LabelExDividendDate, func(r *stock.Record, v string) { r.ExDividendDate = v }},
	{13, LabelShortInterest, func(r *stock.Record, v string) { r.ShortInterest = decodeShortInterest(v) }},
	{14, LabelFloatShorted, func(r *stock.Record, v string) { r.PercentFloatShorted = notation.DecodePercent(v) }},
	{15, LabelAverageVolume, func(r *stock.Record, v string) { r.AvgVolume = notation.DecodeScaled(v) }},
}

// performanceFields maps value cells of the performance table; the label sits in the cell before
var performanceFields = []summaryField{
	{43, LabelFiveDay, func(r *stock.Record, v string) { r.FiveDayPct = notation.DecodePercent(v) }},
	{45, LabelOneMonth, func(r *stock.Record, v string) { r.OneMonthPct = notation.DecodePercent(v) }},
	{47, LabelThreeMonth, func(r *stock.Record, v string) { r.ThreeMonthPct = notation.DecodePercent(v) }},
	{49, LabelYTD, func(r *stock.Record, v string) { r.YTDPct = notation.DecodePercent(v) }},
	{51, LabelOneYear, func(r *stock.Record, v string) { r.OneYearPct = notation.DecodePercent(v) }},
}

// decodeRange splits "123.40 - 130.00" into its bounds
func decodeRange(v string) (notation.Value, notation.Value) {
	parts := strings.Fields(v)
	if len(parts) < 3 {
		return notation.Missing, notation.Missing
	}
	return notation.DecodeFloat(trimCurrency(parts[0])), notation.DecodeFloat(trimCurrency(parts[2]))
}

// decodeShortInterest drops the report date that follows the amount, ie. "101.26M 03/15/24"
func decodeShortInterest(v string) notation.Value {
	parts := strings.Fields(v)
	if len(parts) == 0 {
		return notation.Missing
	}
	return notation.DecodeScaled(parts[0])
}

func trimCurrency(s string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), "$€£¥"))
}
