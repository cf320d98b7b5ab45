package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pretium/internal/extract"
	"github.com/ternarybob/pretium/internal/interfaces"
	"github.com/ternarybob/pretium/internal/transport"
)

// MarketHandler handles quote, chart, news, and analysis endpoints.
type MarketHandler struct {
	market interfaces.MarketService
	logger arbor.ILogger
}

// NewMarketHandler creates a new market handler with dependencies
func NewMarketHandler(market interfaces.MarketService, logger arbor.ILogger) *MarketHandler {
	return &MarketHandler{
		market: market,
		logger: logger,
	}
}

// QuoteHandler handles GET /api/quote/{symbol}
func (h *MarketHandler) QuoteHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := PathSymbol(r, "/api/quote/")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	quote, err := h.market.GetQuote(r.Context(), symbol)
	if err != nil {
		h.writeMarketError(w, symbol, err, "Failed to fetch quote")
		return
	}

	WriteJSON(w, http.StatusOK, quote)
}

// ChartHandler handles GET /api/chart/{symbol}
func (h *MarketHandler) ChartHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := PathSymbol(r, "/api/chart/")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	chart, err := h.market.GetChart(r.Context(), symbol)
	if err != nil {
		h.writeMarketError(w, symbol, err, "Failed to fetch chart")
		return
	}

	WriteJSON(w, http.StatusOK, chart)
}

// NewsHandler handles GET /api/news/{symbol}
func (h *MarketHandler) NewsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := PathSymbol(r, "/api/news/")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	items, err := h.market.GetNews(r.Context(), symbol)
	if err != nil {
		h.writeMarketError(w, symbol, err, "Failed to fetch news")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"items":  items,
		"count":  len(items),
	})
}

// AnalysisHandler handles GET /api/analysis/{symbol}
func (h *MarketHandler) AnalysisHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := PathSymbol(r, "/api/analysis/")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	analysis, err := h.market.GetAnalysis(r.Context(), symbol)
	if err != nil {
		h.writeMarketError(w, symbol, err, "Failed to build analysis")
		return
	}

	WriteJSON(w, http.StatusOK, analysis)
}

// writeMarketError maps fetch pipeline failures to HTTP status codes.
// Source pages that 404 mean an unknown symbol; a page without chart
// identity means the source carries no series for it; anything else
// from the transport is an upstream availability problem.
func (h *MarketHandler) writeMarketError(w http.ResponseWriter, symbol string, err error, message string) {
	if h.logger != nil {
		h.logger.Warn().
			Str("symbol", symbol).
			Err(err).
			Msg(message)
	}

	switch {
	case transport.IsStatus(err, http.StatusNotFound):
		WriteError(w, http.StatusNotFound, "Symbol not found at source")
	case errors.Is(err, extract.ErrChartIDNotFound):
		WriteError(w, http.StatusNotFound, "Chart data not available for symbol")
	case isTransportError(err):
		WriteError(w, http.StatusBadGateway, "Market data source unavailable")
	default:
		WriteError(w, http.StatusInternalServerError, message)
	}
}

func isTransportError(err error) bool {
	var reqErr *transport.RequestError
	return errors.As(err, &reqErr)
}
