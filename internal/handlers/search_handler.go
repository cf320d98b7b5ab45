package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pretium/internal/interfaces"
)

// SearchHandler handles symbol search HTTP requests
type SearchHandler struct {
	market interfaces.MarketService
	logger arbor.ILogger
}

// NewSearchHandler creates a new search handler with dependencies
func NewSearchHandler(market interfaces.MarketService, logger arbor.ILogger) *SearchHandler {
	return &SearchHandler{
		market: market,
		logger: logger,
	}
}

// SearchHandler handles GET /api/search?q=query requests
func (h *SearchHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	// Method validation
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := r.URL.Query().Get("q")

	if h.logger != nil {
		h.logger.Debug().
			Str("query", query).
			Msg("Symbol search request received")
	}

	// Sub-minimum queries come back empty from the service without a
	// source round trip, so no special-casing here.
	results, err := h.market.Search(r.Context(), query)
	if err != nil {
		if h.logger != nil {
			h.logger.Error().
				Err(err).
				Str("query", query).
				Msg("Failed to execute symbol search")
		}
		WriteError(w, http.StatusInternalServerError, "Failed to execute search")
		return
	}

	response := map[string]interface{}{
		"results": results,
		"count":   len(results),
		"query":   query,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
