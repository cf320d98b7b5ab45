package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pretium/internal/common"
	"github.com/ternarybob/pretium/internal/interfaces"
	"github.com/ternarybob/pretium/internal/models"
)

// StatusHandler handles HTTP requests for application status
type StatusHandler struct {
	market    interfaces.MarketService
	scheduler interfaces.SchedulerService
	startedAt time.Time
	logger    arbor.ILogger
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(market interfaces.MarketService, scheduler interfaces.SchedulerService, startedAt time.Time, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		market:    market,
		scheduler: scheduler,
		startedAt: startedAt,
		logger:    logger,
	}
}

// GetStatusHandler handles GET /api/status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	status := models.ServiceStatus{
		Service:   "pretium",
		Version:   common.GetVersion(),
		Status:    "ok",
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		StartedAt: h.startedAt,
		Caches:    h.market.CacheSizes(),
	}

	if h.scheduler != nil {
		jobs := make(map[string]models.JobRun)
		for name, js := range h.scheduler.GetAllJobStatuses() {
			jobs[name] = models.JobRun{
				Schedule:  js.Schedule,
				Running:   js.IsRunning,
				LastRun:   js.LastRun,
				LastError: js.LastError,
			}
		}
		status.Jobs = jobs
	}

	WriteJSON(w, http.StatusOK, status)
}
