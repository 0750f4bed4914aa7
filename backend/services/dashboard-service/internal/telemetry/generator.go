// Package telemetry produces the simulated live data shown on the dashboard.
package telemetry

import (
	"fmt"
	"math/rand/v2"
	"time"

	"evdash/backend/services/dashboard-service/internal/models"
)

// Source supplies uniform random integers in [0, n).
type Source interface {
	IntN(n int) int
}

// NewTimeSeededSource returns a PCG source seeded from the given instant.
func NewTimeSeededSource(now time.Time) Source {
	seed := uint64(now.UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>32|seed<<32))
}

// StationSpec is the fixed part of a station.
type StationSpec struct {
	ID           string
	Location     string
	Chargers     int
	RatedPowerKW int
}

// DefaultRoster lists the stations in operation.
var DefaultRoster = []StationSpec{
	{ID: "BLR-001", Location: "Koramangala 5th Block", Chargers: 10, RatedPowerKW: 150},
	{ID: "BLR-002", Location: "Whitefield", Chargers: 15, RatedPowerKW: 200},
	{ID: "BLR-003", Location: "Electronic City", Chargers: 12, RatedPowerKW: 180},
}

// Snapshot is the table-shaped part of a tick.
type Snapshot struct {
	Stations []models.StationStatus
	Daily    []models.DailyStat
	Metrics  models.RealtimeMetrics
}

// Generator draws tick data from its source. It is not safe for concurrent
// use; every call returns freshly allocated values.
type Generator struct {
	src    Source
	roster []StationSpec
}

// NewGenerator builds a generator. An empty roster selects DefaultRoster.
func NewGenerator(src Source, roster []StationSpec) *Generator {
	if len(roster) == 0 {
		roster = DefaultRoster
	}
	r := make([]StationSpec, len(roster))
	copy(r, roster)
	return &Generator{src: src, roster: r}
}

// Roster returns the station roster.
func (g *Generator) Roster() []StationSpec {
	out := make([]StationSpec, len(g.roster))
	copy(out, g.roster)
	return out
}

func (g *Generator) draw(r Range) int {
	return r.Min + g.src.IntN(r.Max-r.Min+1)
}

func (g *Generator) drawN(r Range, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = g.draw(r)
	}
	return out
}

// Generate draws the station table, the daily history ending today and the
// headline metrics.
func (g *Generator) Generate(now time.Time) Snapshot {
	return Snapshot{
		Stations: g.stations(),
		Daily:    g.daily(now),
		Metrics:  g.metrics(),
	}
}

func (g *Generator) stations() []models.StationStatus {
	n := len(g.roster)
	available := g.drawN(AvailableRange, n)
	load := g.drawN(LoadRange, n)
	temperature := g.drawN(TemperatureRange, n)

	out := make([]models.StationStatus, n)
	for i, st := range g.roster {
		out[i] = models.NewStationStatus(st.ID, st.Location, st.Chargers, st.RatedPowerKW, models.StationReading{
			Available:     available[i],
			CurrentLoadKW: load[i],
			TemperatureC:  temperature[i],
		})
	}
	return out
}

func (g *Generator) daily(now time.Time) []models.DailyStat {
	energy := g.drawN(DailyEnergyRange, DailyHistoryDays)
	sessions := g.drawN(DailySessionsRange, DailyHistoryDays)
	revenue := g.drawN(DailyRevenueRange, DailyHistoryDays)
	duration := g.drawN(DailyDurationRange, DailyHistoryDays)

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	out := make([]models.DailyStat, DailyHistoryDays)
	for i := range out {
		out[i] = models.DailyStat{
			Date:               today.AddDate(0, 0, i-(DailyHistoryDays-1)),
			EnergyKWh:          energy[i],
			Sessions:           sessions[i],
			Revenue:            revenue[i],
			AvgDurationMinutes: duration[i],
		}
	}
	return out
}

func (g *Generator) metrics() models.RealtimeMetrics {
	return models.RealtimeMetrics{
		CurrentPowerKW:     g.draw(CurrentPowerRange),
		ActiveSessions:     g.draw(ActiveSessionsRange),
		TodayEnergyKWh:     g.draw(TodayEnergyRange),
		TodayRevenue:       g.draw(TodayRevenueRange),
		QueueWaiting:       g.draw(QueueWaitingRange),
		AvgWaitTimeMinutes: g.draw(AvgWaitTimeRange),
	}
}

// Deltas draws the change indicators for the headline metrics.
func (g *Generator) Deltas() models.MetricDeltas {
	return models.MetricDeltas{
		CurrentPowerKW:     g.draw(DeltaPowerRange),
		ActiveSessions:     g.draw(DeltaSessionsRange),
		TodayEnergyKWh:     g.draw(DeltaEnergyRange),
		TodayRevenue:       g.draw(DeltaRevenueRange),
		QueueWaiting:       g.draw(DeltaQueueRange),
		AvgWaitTimeMinutes: g.draw(DeltaWaitRange),
	}
}

// PowerTrace draws the last minute of power readings, one per second, the
// last one at now.
func (g *Generator) PowerTrace(now time.Time) []models.PowerPoint {
	out := make([]models.PowerPoint, PowerTracePoints)
	for i := range out {
		out[i] = models.PowerPoint{
			Time:    now.Add(-time.Duration(PowerTracePoints-1-i) * time.Second),
			PowerKW: g.draw(TracePowerRange),
		}
	}
	return out
}

// ActiveSessions draws count charging sessions spread over the given
// stations with replacement. Start time and duration are drawn separately.
func (g *Generator) ActiveSessions(now time.Time, count int, stations []models.StationStatus) []models.ActiveSession {
	if count <= 0 || len(stations) == 0 {
		return []models.ActiveSession{}
	}
	out := make([]models.ActiveSession, count)
	for i := range out {
		vehicle := fmt.Sprintf("KA%02dEV%d", g.draw(PlateDistrictRange), g.draw(PlateNumberRange))
		station := stations[g.src.IntN(len(stations))].Location
		age := g.draw(SessionAgeRange)
		out[i] = models.ActiveSession{
			VehicleID:       vehicle,
			Station:         station,
			StartTime:       now.Add(-time.Duration(age) * time.Minute),
			DurationMinutes: g.draw(SessionDurationRange),
			ChargedKWh:      g.draw(SessionChargedRange),
			Status:          models.SessionStatusCharging,
			ProgressPercent: g.draw(SessionProgressRange),
		}
	}
	return out
}

// Tick runs every generation step for one refresh cycle. The session list
// length always equals Metrics.ActiveSessions. ID is left for the caller.
func (g *Generator) Tick(now time.Time) models.Tick {
	snap := g.Generate(now)
	deltas := g.Deltas()
	trace := g.PowerTrace(now)
	sessions := g.ActiveSessions(now, snap.Metrics.ActiveSessions, snap.Stations)

	return models.Tick{
		GeneratedAt: now,
		Stations:    snap.Stations,
		Summary:     models.SummarizeStations(snap.Stations),
		Daily:       snap.Daily,
		Metrics:     snap.Metrics,
		Deltas:      deltas,
		PowerTrace:  trace,
		Sessions:    sessions,
	}
}
