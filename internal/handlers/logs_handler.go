package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pretium/internal/logs"
)

// LogsHandler serves the in-memory activity log ring.
type LogsHandler struct {
	buffer *logs.Buffer
	logger arbor.ILogger
}

// NewLogsHandler creates a new logs handler
func NewLogsHandler(buffer *logs.Buffer, logger arbor.ILogger) *LogsHandler {
	return &LogsHandler{
		buffer: buffer,
		logger: logger,
	}
}

// GetRecentLogsHandler handles GET /api/logs/recent
// Query parameters:
//   - limit: Max entries, newest first (default: 100, cap: 500)
//   - level: Minimum level - debug, info, warn, error (default: all held)
func (h *LogsHandler) GetRecentLogsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
			if limit > 500 {
				limit = 500
			}
		}
	}

	level := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("level")))

	entries := h.buffer.Recent(limit, level)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  entries,
		"count": len(entries),
	})
}
