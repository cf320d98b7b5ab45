// Package interfaces provides service interfaces for dependency injection.
package interfaces

import (
	"context"

	"github.com/ternarybob/pretium/internal/models"
)

// MarketService is the core market data surface: resolve a symbol,
// fetch and extract from the source, cache, and analyze. Handlers and
// the scheduler depend on this interface, not the implementation.
type MarketService interface {
	// GetQuote returns the current quote with fundamentals for a symbol.
	// Served from cache within the quote TTL; a stale value is returned
	// when the source is unavailable.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)

	// GetChart returns the daily price series with derived technical
	// events. Fails when the source page carries no chart identity.
	GetChart(ctx context.Context, symbol string) (*models.ChartAnalysis, error)

	// Search returns up to 10 symbol candidates for a free-text query.
	// Queries shorter than two characters return an empty list without
	// touching the network.
	Search(ctx context.Context, query string) ([]models.SearchResult, error)

	// GetNews returns recent headlines for a symbol. Best-effort.
	GetNews(ctx context.Context, symbol string) ([]models.NewsItem, error)

	// GetAnalysis returns the combined quote+chart+news view, fetched
	// in parallel. Quote and news degrade to absent on failure; a chart
	// failure fails the analysis.
	GetAnalysis(ctx context.Context, symbol string) (*models.Analysis, error)

	// WarmSymbols refreshes quote and chart caches for the given
	// symbols, serially. Used by the background refresh job.
	WarmSymbols(ctx context.Context, symbols []string) error

	// CacheSizes reports entry counts per cache store for status.
	CacheSizes() map[string]int
}
