package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"evdash/backend/services/dashboard-service/internal/catalog"
	"evdash/backend/services/dashboard-service/internal/models"
)

const (
	defaultTopN = 10
	maxTopN     = 100
)

// LocationHandlers serves the proposed-location analysis.
type LocationHandlers struct {
	catalog *catalog.Catalog
}

// NewLocationHandlers returns handler.
func NewLocationHandlers(c *catalog.Catalog) *LocationHandlers {
	return &LocationHandlers{catalog: c}
}

type locationsResponse struct {
	Count     int               `json:"count"`
	Locations []models.Location `json:"locations"`
}

func newLocationsResponse(locations []models.Location) locationsResponse {
	if locations == nil {
		locations = []models.Location{}
	}
	return locationsResponse{Count: len(locations), Locations: locations}
}

// List handles GET /api/locations. Without a priority parameter every
// location is returned; priority accepts repeated or comma separated values.
func (h *LocationHandlers) List(w http.ResponseWriter, r *http.Request) {
	raw, ok := r.URL.Query()["priority"]
	if !ok {
		writeJSON(w, http.StatusOK, newLocationsResponse(h.catalog.Load()))
		return
	}

	var priorities []models.Priority
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			p, err := models.ParsePriority(part)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			priorities = append(priorities, p)
		}
	}
	writeJSON(w, http.StatusOK, newLocationsResponse(h.catalog.Filter(priorities...)))
}

// Summary handles GET /api/locations/summary.
func (h *LocationHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Summary())
}

// ByPriority handles GET /api/locations/by-priority.
func (h *LocationHandlers) ByPriority(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"groups": h.catalog.GroupByPriority(),
		"counts": h.catalog.PriorityCounts(),
	})
}

// AreaTypes handles GET /api/locations/area-types.
func (h *LocationHandlers) AreaTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"area_types": h.catalog.AreaTypeCounts(),
	})
}

// Top handles GET /api/locations/top?by=investment&n=10&order=desc.
func (h *LocationHandlers) Top(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	by := q.Get("by")
	if by == "" {
		by = string(catalog.ColumnInvestment)
	}
	col, err := catalog.ParseColumn(by)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	n := defaultTopN
	if raw := q.Get("n"); raw != "" {
		n, err = strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxTopN {
			writeError(w, http.StatusBadRequest, "n must be an integer between 0 and 100")
			return
		}
	}

	var locations []models.Location
	switch strings.ToLower(q.Get("order")) {
	case "", "desc":
		locations, err = h.catalog.Top(col, n)
	case "asc":
		locations, err = h.catalog.Bottom(col, n)
	default:
		writeError(w, http.StatusBadRequest, "order must be asc or desc")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newLocationsResponse(locations))
}
