package models

import "time"

// Analysis is the combined per-symbol view: quote, chart with events, and
// headlines, assembled from parallel fetches. Quote and news are
// best-effort and may be nil/empty; a missing chart fails the analysis
// because events cannot be derived without a series.
type Analysis struct {
	Symbol      string         `json:"symbol"`
	Quote       *Quote         `json:"quote,omitempty"`
	Chart       *ChartAnalysis `json:"chart,omitempty"`
	News        []NewsItem     `json:"news,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
}
