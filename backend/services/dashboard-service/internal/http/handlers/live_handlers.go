package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"evdash/backend/services/dashboard-service/internal/feed"
	"evdash/backend/services/dashboard-service/internal/models"
)

// TickReader exposes the most recent tick.
type TickReader interface {
	Latest() (*models.Tick, error)
}

// LiveHandlers serves the synthetic telemetry views.
type LiveHandlers struct {
	ticks  TickReader
	logger *zap.Logger
}

// NewLiveHandlers returns handler.
func NewLiveHandlers(ticks TickReader, logger *zap.Logger) *LiveHandlers {
	return &LiveHandlers{ticks: ticks, logger: logger}
}

type historyResponse struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Daily       []models.DailyStat  `json:"daily"`
	PowerTrace  []models.PowerPoint `json:"power_trace"`
}

type stationsResponse struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Stations    []models.StationStatus `json:"stations"`
	Summary     models.StationSummary  `json:"summary"`
}

// Live handles GET /api/live.
func (h *LiveHandlers) Live(w http.ResponseWriter, r *http.Request) {
	tick, ok := h.latest(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, tick)
}

// History handles GET /api/history.
func (h *LiveHandlers) History(w http.ResponseWriter, r *http.Request) {
	tick, ok := h.latest(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{
		GeneratedAt: tick.GeneratedAt,
		Daily:       tick.Daily,
		PowerTrace:  tick.PowerTrace,
	})
}

// Stations handles GET /api/stations.
func (h *LiveHandlers) Stations(w http.ResponseWriter, r *http.Request) {
	tick, ok := h.latest(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stationsResponse{
		GeneratedAt: tick.GeneratedAt,
		Stations:    tick.Stations,
		Summary:     tick.Summary,
	})
}

func (h *LiveHandlers) latest(w http.ResponseWriter) (*models.Tick, bool) {
	tick, err := h.ticks.Latest()
	if err != nil {
		if errors.Is(err, feed.ErrNoTick) {
			writeError(w, http.StatusServiceUnavailable, "telemetry not ready")
			return nil, false
		}
		h.logger.Error("read latest tick failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	return tick, true
}
