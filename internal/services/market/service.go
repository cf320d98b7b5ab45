package market

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/pretium/internal/cache"
	"github.com/ternarybob/pretium/internal/common"
	"github.com/ternarybob/pretium/internal/events"
	"github.com/ternarybob/pretium/internal/extract"
	"github.com/ternarybob/pretium/internal/interfaces"
	"github.com/ternarybob/pretium/internal/metrics"
	"github.com/ternarybob/pretium/internal/models"
	"github.com/ternarybob/pretium/internal/news"
	"github.com/ternarybob/pretium/internal/resolver"
	"github.com/ternarybob/pretium/internal/session"
	"github.com/ternarybob/pretium/internal/transport"
)

// chartKeyPrefix scopes chart entries apart from quote entries; both
// are keyed by symbol.
const chartKeyPrefix = "CHART_"

var errEmptySymbol = errors.New("symbol is empty")

// Service implements interfaces.MarketService. It owns the session,
// transport, resolver, extractor, and detector wiring plus one cache
// store per operation family. All state is process-lifetime.
type Service struct {
	config    *common.Config
	baseURL   string
	logger    arbor.ILogger
	session   *session.Manager
	client    *transport.Client
	resolver  *resolver.Resolver
	extractor *extract.Extractor
	detector  *events.Detector
	news      *news.Provider

	quotes    *cache.Store[*models.Quote]
	charts    *cache.Store[*models.ChartAnalysis]
	searches  *cache.Store[[]models.SearchResult]
	headlines *cache.Store[[]models.NewsItem]
	resolved  *cache.Store[models.ResolvedResource]
}

// NewService wires the full acquisition stack from configuration.
func NewService(cfg *common.Config, logger arbor.ILogger, m *metrics.Metrics) interfaces.MarketService {
	baseURL := strings.TrimRight(cfg.Source.BaseURL, "/")

	sess := session.NewManager(session.Options{
		BaseURL:   baseURL,
		Override:  cfg.Source.SessionCookie,
		TTL:       common.Duration(cfg.Source.SessionTTL, session.DefaultTTL),
		UserAgent: cfg.Source.UserAgent,
	}, logger, m)

	client := transport.New(
		transport.WithLogger(logger),
		transport.WithMetrics(m),
		transport.WithSessionProvider(sess),
		transport.WithUserAgent(cfg.Source.UserAgent),
		transport.WithRateLimit(cfg.Transport.RateLimit),
		transport.WithRetryPolicy(transport.RetryPolicy{
			MaxAttempts:       cfg.Transport.MaxAttempts,
			Delay:             common.Duration(cfg.Transport.RetryDelay, time.Second),
			PerAttemptTimeout: common.Duration(cfg.Transport.RequestTimeout, 10*time.Second),
		}),
	)

	var provider *news.Provider
	if cfg.News.Enabled {
		provider = news.NewProvider(news.Options{
			BaseURL:   cfg.News.BaseURL,
			MaxItems:  cfg.News.MaxItems,
			Timeout:   common.Duration(cfg.News.Timeout, 0),
			UserAgent: cfg.Source.UserAgent,
		}, logger)
	}

	searchTTL := common.Duration(cfg.Cache.SearchTTL, 5*time.Minute)

	return &Service{
		config:    cfg,
		baseURL:   baseURL,
		logger:    logger,
		session:   sess,
		client:    client,
		resolver:  resolver.New(client, baseURL, logger),
		extractor: extract.New(client, sess, baseURL, logger),
		detector:  events.NewDetector(logger, m),
		news:      provider,
		quotes:    cache.NewStore[*models.Quote]("quotes", common.Duration(cfg.Cache.QuoteTTL, time.Minute), m),
		charts:    cache.NewStore[*models.ChartAnalysis]("charts", common.Duration(cfg.Cache.ChartTTL, time.Hour), m),
		searches:  cache.NewStore[[]models.SearchResult]("search", searchTTL, m),
		headlines: cache.NewStore[[]models.NewsItem]("news", common.Duration(cfg.Cache.NewsTTL, 15*time.Minute), m),
		resolved:  cache.NewStore[models.ResolvedResource]("symbols", searchTTL, m),
	}
}

// GetQuote returns the cached or freshly extracted quote for a symbol.
func (s *Service) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	normalized := common.NormalizeSymbol(symbol)
	if normalized == "" {
		return nil, errEmptySymbol
	}
	return s.quotes.Do(ctx, normalized, func(ctx context.Context) (*models.Quote, error) {
		return s.fetchQuote(ctx, normalized)
	})
}

func (s *Service) fetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	started := time.Now()

	res := s.resolve(ctx, symbol)
	page, err := s.fetchCompanyPage(ctx, res, "quote")
	if err != nil {
		return nil, fmt.Errorf("quote for %s: %w", symbol, err)
	}

	quote := s.extractor.Quote(ctx, symbol, page)
	if s.logger != nil {
		s.logger.Info().
			Str("symbol", symbol).
			Str("resource", res.ResourceID).
			Str("duration", time.Since(started).String()).
			Msg("Quote refreshed")
	}
	return quote, nil
}

// GetChart returns the cached or freshly built chart analysis: the
// daily series plus derived technical events.
func (s *Service) GetChart(ctx context.Context, symbol string) (*models.ChartAnalysis, error) {
	normalized := common.NormalizeSymbol(symbol)
	if normalized == "" {
		return nil, errEmptySymbol
	}
	return s.charts.Do(ctx, chartKeyPrefix+normalized, func(ctx context.Context) (*models.ChartAnalysis, error) {
		return s.fetchChart(ctx, normalized)
	})
}

func (s *Service) fetchChart(ctx context.Context, symbol string) (*models.ChartAnalysis, error) {
	started := time.Now()

	res := s.resolve(ctx, symbol)
	page, err := s.fetchCompanyPage(ctx, res, "chart")
	if err != nil {
		return nil, fmt.Errorf("chart for %s: %w", symbol, err)
	}

	series, err := s.extractor.Chart(ctx, symbol, page)
	if err != nil {
		return nil, fmt.Errorf("chart for %s: %w", symbol, err)
	}

	analysis := &models.ChartAnalysis{
		Symbol:          symbol,
		Points:          series,
		TechnicalEvents: s.detector.Detect(series.Dates(), series.Prices()),
		UpdatedAt:       time.Now(),
	}
	if s.logger != nil {
		s.logger.Info().
			Str("symbol", symbol).
			Int("points", len(series)).
			Int("events", len(analysis.TechnicalEvents)).
			Str("duration", time.Since(started).String()).
			Msg("Chart refreshed")
	}
	return analysis, nil
}

// Search returns up to 10 candidates for a query. Trivial queries are
// answered empty without touching the network or the cache.
func (s *Service) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	trimmed := strings.TrimSpace(query)
	if len(trimmed) < resolver.MinQueryLength {
		return []models.SearchResult{}, nil
	}
	return s.searches.Do(ctx, strings.ToLower(trimmed), func(ctx context.Context) ([]models.SearchResult, error) {
		return s.resolver.Search(ctx, trimmed)
	})
}

// GetNews returns recent headlines for a symbol. Returns empty when
// the news provider is disabled.
func (s *Service) GetNews(ctx context.Context, symbol string) ([]models.NewsItem, error) {
	normalized := common.NormalizeSymbol(symbol)
	if normalized == "" {
		return nil, errEmptySymbol
	}
	if s.news == nil {
		return []models.NewsItem{}, nil
	}
	return s.headlines.Do(ctx, normalized, func(ctx context.Context) ([]models.NewsItem, error) {
		return s.news.Fetch(ctx, normalized, s.companyName(ctx, normalized))
	})
}

// companyName gives the news query a full company name when the search
// endpoint knows one. Best-effort; the ticker alone still works.
func (s *Service) companyName(ctx context.Context, symbol string) string {
	results, err := s.Search(ctx, symbol)
	if err != nil || len(results) == 0 {
		return ""
	}
	return results[0].Name
}

// GetAnalysis assembles the combined view with quote, chart, and news
// fetched in parallel. The chart is load-bearing: without a series
// there are no events and the analysis fails. Quote and news degrade
// to absent fields.
func (s *Service) GetAnalysis(ctx context.Context, symbol string) (*models.Analysis, error) {
	normalized := common.NormalizeSymbol(symbol)
	if normalized == "" {
		return nil, errEmptySymbol
	}

	var (
		wg       sync.WaitGroup
		quote    *models.Quote
		chart    *models.ChartAnalysis
		items    []models.NewsItem
		quoteErr error
		chartErr error
		newsErr  error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		quote, quoteErr = s.GetQuote(ctx, normalized)
	}()
	go func() {
		defer wg.Done()
		chart, chartErr = s.GetChart(ctx, normalized)
	}()
	go func() {
		defer wg.Done()
		items, newsErr = s.GetNews(ctx, normalized)
	}()
	wg.Wait()

	if chartErr != nil {
		return nil, fmt.Errorf("analysis for %s: %w", normalized, chartErr)
	}
	if quoteErr != nil {
		quote = nil
		if s.logger != nil {
			s.logger.Warn().Err(quoteErr).Str("symbol", normalized).Msg("Analysis continuing without quote")
		}
	}
	if newsErr != nil {
		items = nil
		if s.logger != nil {
			s.logger.Warn().Err(newsErr).Str("symbol", normalized).Msg("Analysis continuing without news")
		}
	}

	return &models.Analysis{
		Symbol:      normalized,
		Quote:       quote,
		Chart:       chart,
		News:        items,
		GeneratedAt: time.Now(),
	}, nil
}

// WarmSymbols refreshes quote and chart caches for the given symbols,
// serially. The transport's rate limiter paces the fetches; entries
// still fresh are served from cache and cost nothing.
func (s *Service) WarmSymbols(ctx context.Context, symbols []string) error {
	var firstErr error
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.GetQuote(ctx, symbol); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if s.logger != nil {
				s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Warm refresh quote failed")
			}
		}
		if _, err := s.GetChart(ctx, symbol); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if s.logger != nil {
				s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Warm refresh chart failed")
			}
		}
	}
	return firstErr
}

// CacheSizes reports entry counts per store for the status endpoint.
func (s *Service) CacheSizes() map[string]int {
	return map[string]int{
		s.quotes.Name():    s.quotes.Len(),
		s.charts.Name():    s.charts.Len(),
		s.searches.Name():  s.searches.Len(),
		s.headlines.Name(): s.headlines.Len(),
		s.resolved.Name():  s.resolved.Len(),
	}
}

// resolve maps a symbol to its source resource, caching successful
// lookups for the search TTL. A failed lookup falls back to a slug
// guess that is deliberately not cached, so the next call retries the
// search endpoint.
func (s *Service) resolve(ctx context.Context, symbol string) models.ResolvedResource {
	res, err := s.resolved.Do(ctx, symbol, func(ctx context.Context) (models.ResolvedResource, error) {
		return s.resolver.Lookup(ctx, symbol)
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Symbol lookup failed, using slug fallback")
		}
		return resolver.Fallback(symbol)
	}
	return res
}

// fetchCompanyPage fetches the company page, retrying without the
// consolidated variant when the source has none for this listing.
func (s *Service) fetchCompanyPage(ctx context.Context, res models.ResolvedResource, operation string) ([]byte, error) {
	path := s.companyPath(res)
	resp, err := s.client.Get(ctx, s.baseURL+path, transport.ForOperation(operation))
	if err != nil && path != res.ResourcePath && transport.IsStatus(err, http.StatusNotFound) {
		resp, err = s.client.Get(ctx, s.baseURL+res.ResourcePath, transport.ForOperation(operation))
	}
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// companyPath applies the consolidated-financials preference unless the
// resolved id already carries a variant suffix.
func (s *Service) companyPath(res models.ResolvedResource) string {
	path := res.ResourcePath
	if s.config.Source.Consolidated && !strings.Contains(res.ResourceID, "/") {
		path += "consolidated/"
	}
	return path
}
