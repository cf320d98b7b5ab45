package server

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - market data
	mux.HandleFunc("/api/quote/", s.app.MarketHandler.QuoteHandler)
	mux.HandleFunc("/api/chart/", s.app.MarketHandler.ChartHandler)
	mux.HandleFunc("/api/news/", s.app.MarketHandler.NewsHandler)
	mux.HandleFunc("/api/analysis/", s.app.MarketHandler.AnalysisHandler)
	mux.HandleFunc("/api/search", s.app.SearchHandler.SearchHandler)

	// API routes - operations
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler)
	mux.HandleFunc("/api/logs/recent", s.app.LogsHandler.GetRecentLogsHandler)
	mux.HandleFunc("/api/jobs", s.handleJobRoutes)
	mux.HandleFunc("/api/jobs/", s.handleJobRoutes)

	// API routes - system
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleJobRoutes routes job-related requests to the appropriate handler
func (s *Server) handleJobRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")

	// GET /api/jobs
	if path == "/api/jobs" {
		RouteByMethod(w, r, MethodRouter{
			"GET": s.app.SchedulerHandler.ListJobsHandler,
		})
		return
	}

	// POST /api/jobs/{name}/trigger
	if strings.HasSuffix(path, "/trigger") {
		RouteByMethod(w, r, MethodRouter{
			"POST": s.app.SchedulerHandler.TriggerJobHandler,
		})
		return
	}

	http.Error(w, "Not found", http.StatusNotFound)
}
