package resolver

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/pretium/internal/common"
	"github.com/ternarybob/pretium/internal/models"
	"github.com/ternarybob/pretium/internal/transport"
)

const (
	// searchPath is the source's company search endpoint.
	searchPath = "/api/company/search/"

	// MinQueryLength short-circuits trivial queries before they hit
	// the network.
	MinQueryLength = 2

	// MaxSearchResults caps user-facing search output.
	MaxSearchResults = 10
)

// Resolver maps user-supplied symbols and free-text queries onto the
// source's resource identifiers.
type Resolver struct {
	client  *transport.Client
	baseURL string
	logger  arbor.ILogger
}

// New creates a resolver over the given transport.
func New(client *transport.Client, baseURL string, logger arbor.ILogger) *Resolver {
	return &Resolver{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Resolve maps a symbol to a resource, falling back to a slugified
// guess when the search is unavailable. It never fails: the source
// accepts slug URLs for most listings, so a guess is usually usable.
func (r *Resolver) Resolve(ctx context.Context, symbol string) models.ResolvedResource {
	resolved, err := r.Lookup(ctx, symbol)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn().Err(err).Str("symbol", symbol).Msg("Symbol lookup failed, using slug fallback")
		}
		return Fallback(symbol)
	}
	return resolved
}

// Lookup resolves a symbol through the search endpoint. Unlike
// Resolve it reports failure, so callers can decide whether a
// slug guess should be cached.
func (r *Resolver) Lookup(ctx context.Context, symbol string) (models.ResolvedResource, error) {
	symbol = common.NormalizeSymbol(symbol)

	candidates, err := r.search(ctx, symbol)
	if err != nil {
		return models.ResolvedResource{}, err
	}

	winner, ok := rankCandidates(symbol, candidates)
	if !ok {
		return models.ResolvedResource{}, fmt.Errorf("no search results for %q", symbol)
	}

	id := resourceID(winner)
	if id == "" {
		return models.ResolvedResource{}, fmt.Errorf("no usable resource id for %q", symbol)
	}

	return models.ResolvedResource{
		Symbol:       symbol,
		ResourceID:   id,
		ResourcePath: companyPathPrefix + id + "/",
	}, nil
}

// Fallback builds a resource from the symbol alone.
func Fallback(symbol string) models.ResolvedResource {
	symbol = common.NormalizeSymbol(symbol)
	id := common.Slugify(symbol)
	return models.ResolvedResource{
		Symbol:       symbol,
		ResourceID:   id,
		ResourcePath: companyPathPrefix + id + "/",
	}
}

// Search runs a free-text company search. Queries shorter than
// MinQueryLength return empty results without touching the network.
func (r *Resolver) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if len(query) < MinQueryLength {
		return []models.SearchResult{}, nil
	}

	candidates, err := r.search(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		if len(results) >= MaxSearchResults {
			break
		}
		results = append(results, models.SearchResult{
			Symbol:   displaySymbol(c),
			Name:     c.name,
			Exchange: common.InferExchange(resourceID(c)),
		})
	}

	return results, nil
}

// search queries the source and parses whatever candidate shape comes
// back. A non-JSON body (an error page, a bot wall) yields no
// candidates rather than an error; an empty result list is not a
// transport failure.
func (r *Resolver) search(ctx context.Context, query string) ([]candidate, error) {
	params := url.Values{}
	params.Set("q", query)

	searchURL := r.baseURL + searchPath + "?" + params.Encode()
	resp, err := r.client.Get(ctx, searchURL, transport.ForOperation("search"))
	if err != nil {
		return nil, err
	}

	parsed, ok := resp.JSON()
	if !ok {
		if r.logger != nil {
			r.logger.Warn().Str("query", query).Msg("Search returned non-JSON body")
		}
		return nil, nil
	}

	return parseCandidates(parsed), nil
}

func displaySymbol(c candidate) string {
	if c.symbol != "" {
		return strings.ToUpper(c.symbol)
	}
	if c.slug != "" {
		return strings.ToUpper(strings.Trim(c.slug, "/"))
	}
	return strings.ToUpper(common.Slugify(c.name))
}
