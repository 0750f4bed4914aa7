package handlers

import (
	"bytes"
	"net/http"
	"time"

	"go.uber.org/zap"

	"evdash/backend/services/dashboard-service/internal/catalog"
	"evdash/backend/services/dashboard-service/internal/http/web"
)

type dashboardPage struct {
	Title           string
	IntervalSeconds int
	Summary         catalog.Summary
	Groups          []catalog.PriorityGroup
}

// NewDashboardHandler returns GET / handler rendering the live page.
func NewDashboardHandler(c *catalog.Catalog, settings FeedController, logger *zap.Logger) http.HandlerFunc {
	summary := c.Summary()
	groups := c.GroupByPriority()

	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			writeError(w, http.StatusNotFound, "not found")
			return
		}

		page := dashboardPage{
			Title:           "EV Charging Dashboard",
			IntervalSeconds: int(settings.Settings().Interval / time.Second),
			Summary:         summary,
			Groups:          groups,
		}

		var buf bytes.Buffer
		if err := web.Templates.ExecuteTemplate(&buf, web.DashboardTemplate, page); err != nil {
			logger.Error("render dashboard failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}
