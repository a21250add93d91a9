// Package tickers resolves user supplied ticker lists
package tickers

import "strings"

// Aliases that expand to a whole index
const (
	Dow30Alias     = "DOW30"
	Nasdaq100Alias = "NASDAQ100"
)

// Dow30 lists the index constituents
var Dow30 = []string{
	"AAPL", "AMGN", "AMZN", "AXP", "BA", "CAT", "CRM", "CSCO", "CVX", "DIS",
	"GS", "HD", "HON", "IBM", "JNJ", "JPM", "KO", "MCD", "MMM", "MRK",
	"MSFT", "NKE", "NVDA", "PG", "SHW", "TRV", "UNH", "V", "VZ", "WMT",
}

// Nasdaq100 lists the index securities; both Alphabet share classes are included
var Nasdaq100 = []string{
	"AAPL", "ABNB", "ADBE", "ADI", "ADP", "ADSK", "AEP", "AMAT", "AMD", "AMGN",
	"AMZN", "ANSS", "ARM", "ASML", "AVGO", "AZN", "BIIB", "BKNG", "BKR", "CCEP",
	"CDNS", "CDW", "CEG", "CHTR", "CMCSA", "COST", "CPRT", "CRWD", "CSCO", "CSGP",
	"CSX", "CTAS", "CTSH", "DASH", "DDOG", "DLTR", "DXCM", "EA", "EXC", "FANG",
	"FAST", "FTNT", "GEHC", "GFS", "GILD", "GOOG", "GOOGL", "HON", "IDXX", "ILMN",
	"INTC", "INTU", "ISRG", "KDP", "KHC", "KLAC", "LIN", "LRCX", "LULU", "MAR",
	"MCHP", "MDB", "MDLZ", "MELI", "META", "MNST", "MRNA", "MRVL", "MSFT", "MU",
	"NFLX", "NVDA", "NXPI", "ODFL", "ON", "ORLY", "PANW", "PAYX", "PCAR", "PDD",
	"PEP", "PYPL", "QCOM", "REGN", "ROP", "ROST", "SBUX", "SMCI", "SNPS", "TEAM",
	"TMUS", "TSLA", "TTD", "TTWO", "TXN", "VRSK", "VRTX", "WBD", "WDAY", "XEL",
	"ZS",
}

// Resolve normalizes symbols to upper case, expands the index aliases and drops
// blanks. Order is kept and duplicates are not removed.
func Resolve(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		switch symbol {
		case "":
		case Dow30Alias:
			out = append(out, Dow30...)
		case Nasdaq100Alias:
			out = append(out, Nasdaq100...)
		default:
			out = append(out, symbol)
		}
	}
	return out
}
