package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"evdash/backend/services/dashboard-service/internal/feed"
)

// FeedController is the operator facing part of the feed.
type FeedController interface {
	Settings() feed.Settings
	UpdateSettings(feed.Settings) error
	RefreshNow()
}

// SettingsHandlers exposes the refresh policy and manual refresh.
type SettingsHandlers struct {
	feed   FeedController
	logger *zap.Logger
}

// NewSettingsHandlers returns handler.
func NewSettingsHandlers(f FeedController, logger *zap.Logger) *SettingsHandlers {
	return &SettingsHandlers{feed: f, logger: logger}
}

type settingsPayload struct {
	IntervalSeconds int  `json:"interval_seconds"`
	AutoRefresh     bool `json:"auto_refresh"`
}

type settingsUpdate struct {
	IntervalSeconds *int  `json:"interval_seconds"`
	AutoRefresh     *bool `json:"auto_refresh"`
}

func toPayload(s feed.Settings) settingsPayload {
	return settingsPayload{
		IntervalSeconds: int(s.Interval / time.Second),
		AutoRefresh:     s.AutoRefresh,
	}
}

// Get handles GET /api/settings.
func (h *SettingsHandlers) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toPayload(h.feed.Settings()))
}

// Update handles PUT /api/settings. Omitted fields keep their value.
func (h *SettingsHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req settingsUpdate
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings payload")
		return
	}

	next := h.feed.Settings()
	if req.IntervalSeconds != nil {
		interval, err := feed.IntervalFromSeconds(*req.IntervalSeconds)
		if err != nil {
			writeError(w, http.StatusBadRequest, "interval_seconds must be between 5 and 60")
			return
		}
		next.Interval = interval
	}
	if req.AutoRefresh != nil {
		next.AutoRefresh = *req.AutoRefresh
	}

	if err := h.feed.UpdateSettings(next); err != nil {
		if errors.Is(err, feed.ErrIntervalOutOfRange) {
			writeError(w, http.StatusBadRequest, "interval_seconds must be between 5 and 60")
			return
		}
		h.logger.Error("update settings failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.logger.Info("refresh settings updated",
		zap.Duration("interval", next.Interval),
		zap.Bool("auto_refresh", next.AutoRefresh))
	writeJSON(w, http.StatusOK, toPayload(next))
}

// Refresh handles POST /api/refresh.
func (h *SettingsHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	h.feed.RefreshNow()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh scheduled"})
}
