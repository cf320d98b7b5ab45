package models

import (
	"sort"
	"time"
)

// ChartPoint is one (date, price) observation. Dates are the source's
// "2006-01-02" strings; missing trading days are simply absent.
type ChartPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// ChartSeries is a date-ascending price series with no gap-filling.
type ChartSeries []ChartPoint

// SortAscending orders the series by date string. Source dates are ISO
// formatted, so lexical order is chronological order.
func (s ChartSeries) SortAscending() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Date < s[j].Date })
}

// Dates returns the date column.
func (s ChartSeries) Dates() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Date
	}
	return out
}

// Prices returns the price column.
func (s ChartSeries) Prices() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Price
	}
	return out
}

// ChartAnalysis is a chart series with its derived technical events.
// Events are regenerated per request, never persisted.
type ChartAnalysis struct {
	Symbol          string           `json:"symbol"`
	Points          ChartSeries      `json:"points"`
	TechnicalEvents []TechnicalEvent `json:"technical_events"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
