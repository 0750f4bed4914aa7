package httpserver

import (
	"net/http"
	"strings"

	"evdash/backend/services/dashboard-service/internal/http/handlers"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	HealthHandler    http.HandlerFunc
	DashboardHandler http.HandlerFunc
	LiveHandlers     *handlers.LiveHandlers
	LocationHandlers *handlers.LocationHandlers
	SettingsHandlers *handlers.SettingsHandlers
	WSHandler        http.HandlerFunc
	// MetricsHandler is optional.
	MetricsHandler http.Handler
}

// NewRouter wires HTTP routes.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/health", method(http.MethodGet, deps.HealthHandler))
	mux.Handle("/", method(http.MethodGet, deps.DashboardHandler))

	mux.Handle("/api/live", method(http.MethodGet, http.HandlerFunc(deps.LiveHandlers.Live)))
	mux.Handle("/api/history", method(http.MethodGet, http.HandlerFunc(deps.LiveHandlers.History)))
	mux.Handle("/api/stations", method(http.MethodGet, http.HandlerFunc(deps.LiveHandlers.Stations)))

	mux.Handle("/api/locations", method(http.MethodGet, http.HandlerFunc(deps.LocationHandlers.List)))
	mux.Handle("/api/locations/summary", method(http.MethodGet, http.HandlerFunc(deps.LocationHandlers.Summary)))
	mux.Handle("/api/locations/by-priority", method(http.MethodGet, http.HandlerFunc(deps.LocationHandlers.ByPriority)))
	mux.Handle("/api/locations/top", method(http.MethodGet, http.HandlerFunc(deps.LocationHandlers.Top)))
	mux.Handle("/api/locations/area-types", method(http.MethodGet, http.HandlerFunc(deps.LocationHandlers.AreaTypes)))

	mux.Handle("/api/settings", methods(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(deps.SettingsHandlers.Get),
		http.MethodPut: http.HandlerFunc(deps.SettingsHandlers.Update),
	}))
	mux.Handle("/api/refresh", method(http.MethodPost, http.HandlerFunc(deps.SettingsHandlers.Refresh)))

	mux.Handle("/ws", method(http.MethodGet, deps.WSHandler))
	if deps.MetricsHandler != nil {
		mux.Handle("/metrics", method(http.MethodGet, deps.MetricsHandler))
	}

	return mux
}

func method(expected string, handler http.Handler) http.Handler {
	return methods(map[string]http.Handler{expected: handler})
}

func methods(byMethod map[string]http.Handler) http.Handler {
	allowed := make([]string, 0, len(byMethod))
	for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		if _, ok := byMethod[m]; ok {
			allowed = append(allowed, m)
		}
	}
	allow := strings.Join(allowed, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler, ok := byMethod[r.Method]
		if !ok {
			w.Header().Set("Allow", allow)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusMethodNotAllowed)
			_, _ = w.Write([]byte(`{"error":"method not allowed"}` + "\n"))
			return
		}
		handler.ServeHTTP(w, r)
	})
}
