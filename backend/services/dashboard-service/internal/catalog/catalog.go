// Package catalog holds the fixed table of proposed charging locations and
// the read-only aggregations the dashboard computes over it.
package catalog

import (
	"github.com/shopspring/decimal"

	"evdash/backend/services/dashboard-service/internal/models"
)

// Catalog is immutable after New; it is safe for concurrent readers.
type Catalog struct {
	locations []models.Location
	byName    map[string]int
}

// New builds the catalog from the compiled-in table. Build it once at
// startup and share the pointer.
func New() *Catalog {
	locations := proposedLocations()
	byName := make(map[string]int, len(locations))
	for i, loc := range locations {
		if _, dup := byName[loc.Name]; dup {
			panic("catalog: duplicate location " + loc.Name)
		}
		if !loc.Priority.Valid() {
			panic("catalog: invalid priority for " + loc.Name)
		}
		byName[loc.Name] = i
	}
	return &Catalog{locations: locations, byName: byName}
}

// Load returns the rows in catalog order. The slice is a copy.
func (c *Catalog) Load() []models.Location {
	out := make([]models.Location, len(c.locations))
	copy(out, c.locations)
	return out
}

// Len returns the number of locations.
func (c *Catalog) Len() int {
	return len(c.locations)
}

// Lookup finds a location by its exact name.
func (c *Catalog) Lookup(name string) (models.Location, bool) {
	idx, ok := c.byName[name]
	if !ok {
		return models.Location{}, false
	}
	return c.locations[idx], true
}

func loc(name string, lat, lng float64, area string, p models.Priority, traffic int, landmarks string, chargers int, investment int64, roi int) models.Location {
	return models.Location{
		Name:                name,
		Latitude:            lat,
		Longitude:           lng,
		AreaType:            area,
		Priority:            p,
		DailyTraffic:        traffic,
		RecommendedChargers: chargers,
		Investment:          decimal.NewFromInt(investment),
		ROIMonths:           roi,
		Landmarks:           landmarks,
	}
}

func proposedLocations() []models.Location {
	const (
		medium   = models.PriorityMedium
		high     = models.PriorityHigh
		veryHigh = models.PriorityVeryHigh
	)
	return []models.Location{
		loc("Koramangala (Proposed)", 12.9352, 77.6245, "Residential + Commercial", high, 8500, "Forum Mall, Restaurants", 12, 180, 18),
		loc("Whitefield Tech Park (Proposed)", 12.9698, 77.7499, "IT Hub", veryHigh, 12000, "ITPL, Tech Parks", 20, 300, 14),
		loc("Indiranagar Main (Proposed)", 12.9716, 77.6412, "Commercial + Residential", high, 9500, "Metro, CMH Road", 15, 225, 16),
		loc("Electronic City Phase 1 (Proposed)", 12.8456, 77.6603, "IT Hub", veryHigh, 15000, "Infosys Campus, Tech Parks", 25, 375, 12),
		loc("MG Road Metro (Proposed)", 12.9716, 77.5946, "Metro Station + Commercial", veryHigh, 11000, "MG Road Metro, Brigade Road", 18, 270, 15),
		loc("HSR Layout (Proposed)", 12.9116, 77.6382, "Residential + Commercial", high, 7500, "BDA Complex, Parks", 10, 150, 20),
		loc("Yeshwanthpur Metro (Proposed)", 13.0280, 77.5558, "Metro Station + Transport Hub", high, 9000, "Metro Station, Railway", 15, 225, 18),
		loc("Bellandur ORR (Proposed)", 12.9266, 77.6799, "IT Hub + Highway", veryHigh, 13000, "Eco Space, Manyata Tech Park", 22, 330, 13),
		loc("Hebbal Flyover (Proposed)", 13.0358, 77.5971, "Highway Junction", high, 10000, "Metro, Manyata Tech Park", 16, 240, 16),
		loc("JP Nagar (Proposed)", 12.9088, 77.5850, "Residential", medium, 6500, "Metro Station, Residential", 8, 120, 22),
		loc("Malleshwaram (Proposed)", 13.0032, 77.5701, "Residential + Commercial", medium, 6000, "Orion Mall, Residential", 8, 120, 21),
		loc("Sarjapur Road (Proposed)", 12.9100, 77.6970, "IT Hub + Residential", veryHigh, 11500, "Tech Parks, Restaurants", 20, 300, 14),
		loc("KR Puram Railway (Proposed)", 13.0054, 77.6966, "Railway Station + Industrial", high, 8000, "Railway Station", 12, 180, 19),
		loc("Airport Road (Proposed)", 13.0569, 77.6412, "Airport Corridor", veryHigh, 14000, "Manyata Tech Park", 24, 360, 13),
		loc("Jayanagar 4th Block (Proposed)", 12.9250, 77.5833, "Residential + Commercial", medium, 6800, "Commercial Street nearby", 10, 150, 20),
	}
}
