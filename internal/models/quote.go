package models

import (
	"strings"
	"time"
)

// Fundamental keys use the source's display vocabulary. Values are opaque
// display strings ("₹ 1,234 Cr.") and are not guaranteed numeric-parseable.
const (
	FundamentalMarketCap       = "Market Cap"
	FundamentalCurrentPrice    = "Current Price"
	FundamentalHighLow         = "High / Low"
	FundamentalStockPE         = "Stock P/E"
	FundamentalBookValue       = "Book Value"
	FundamentalDividendYield   = "Dividend Yield"
	FundamentalROCE            = "ROCE"
	FundamentalROE             = "ROE"
	FundamentalFaceValue       = "Face Value"
	FundamentalPromoterHolding = "Promoter holding"
	FundamentalDebtToEquity    = "Debt to equity"
)

// Quote represents a normalized point-in-time quote for one symbol.
type Quote struct {
	Symbol        string            `json:"symbol"`
	Price         float64           `json:"price"`
	PreviousClose float64           `json:"previous_close,omitempty"`
	ChangePercent float64           `json:"change_percent"`
	Volume        int64             `json:"volume"`
	Fundamentals  map[string]string `json:"fundamentals"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// NewQuote creates an empty quote for a symbol with a non-nil fundamentals map.
func NewQuote(symbol string) *Quote {
	return &Quote{
		Symbol:       symbol,
		Fundamentals: map[string]string{},
		UpdatedAt:    time.Now(),
	}
}

// Fundamental returns the display value for a key, or "" when absent.
func (q *Quote) Fundamental(key string) string {
	if q.Fundamentals == nil {
		return ""
	}
	return q.Fundamentals[key]
}

// FundamentalNumeric strips everything but digits, sign, and decimal point
// from a fundamental value. Display strings carry currency symbols, commas,
// and unit suffixes, so arithmetic consumers must go through this.
func (q *Quote) FundamentalNumeric(key string) string {
	var b strings.Builder
	for _, r := range q.Fundamental(key) {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
