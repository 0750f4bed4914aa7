package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evdash/backend/services/dashboard-service/internal/models"
)

// edgeSource always returns the lowest or the highest value.
type edgeSource struct {
	high bool
}

func (s edgeSource) IntN(n int) int {
	if s.high {
		return n - 1
	}
	return 0
}

var fixedNow = time.Date(2025, time.March, 14, 15, 4, 5, 600, time.UTC)

func TestGenerateLowestDraws(t *testing.T) {
	g := NewGenerator(edgeSource{}, nil)
	snap := g.Generate(fixedNow)

	require.Len(t, snap.Stations, 3)
	wantInUse := []int{8, 13, 10}
	wantUtil := []float64{80, 86.7, 83.3}
	for i, s := range snap.Stations {
		assert.Equal(t, DefaultRoster[i].ID, s.StationID)
		assert.Equal(t, DefaultRoster[i].Location, s.Location)
		assert.Equal(t, DefaultRoster[i].RatedPowerKW, s.RatedPowerKW)
		assert.Equal(t, 2, s.Available)
		assert.Equal(t, wantInUse[i], s.InUse)
		assert.InDelta(t, wantUtil[i], s.Utilization, 1e-9)
		assert.Equal(t, 50, s.CurrentLoadKW)
		assert.Equal(t, 28, s.TemperatureC)
	}

	assert.Equal(t, models.RealtimeMetrics{
		CurrentPowerKW:     250,
		ActiveSessions:     8,
		TodayEnergyKWh:     1200,
		TodayRevenue:       25000,
		QueueWaiting:       0,
		AvgWaitTimeMinutes: 5,
	}, snap.Metrics)

	for _, d := range snap.Daily {
		assert.Equal(t, models.DailyStat{Date: d.Date, EnergyKWh: 800, Sessions: 80, Revenue: 15000, AvgDurationMinutes: 35}, d)
	}
}

func TestGenerateHighestDraws(t *testing.T) {
	g := NewGenerator(edgeSource{high: true}, nil)
	snap := g.Generate(fixedNow)

	wantUtil := []float64{30, 53.3, 41.7}
	for i, s := range snap.Stations {
		assert.Equal(t, 7, s.Available)
		assert.InDelta(t, wantUtil[i], s.Utilization, 1e-9)
		assert.Equal(t, 149, s.CurrentLoadKW)
		assert.Equal(t, 44, s.TemperatureC)
	}
	assert.Equal(t, 449, snap.Metrics.CurrentPowerKW)
	assert.Equal(t, 24, snap.Metrics.ActiveSessions)
	assert.Equal(t, 1799, snap.Metrics.TodayEnergyKWh)
	assert.Equal(t, 34999, snap.Metrics.TodayRevenue)
	assert.Equal(t, 7, snap.Metrics.QueueWaiting)
	assert.Equal(t, 24, snap.Metrics.AvgWaitTimeMinutes)

	last := snap.Daily[len(snap.Daily)-1]
	assert.Equal(t, 2499, last.EnergyKWh)
	assert.Equal(t, 199, last.Sessions)
	assert.Equal(t, 44999, last.Revenue)
	assert.Equal(t, 74, last.AvgDurationMinutes)
}

func TestDailyHistoryShape(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2025, time.March, 1, 0, 30, 0, 0, loc)
	daily := NewGenerator(edgeSource{}, nil).Generate(now).Daily

	require.Len(t, daily, DailyHistoryDays)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, loc), daily[len(daily)-1].Date)
	assert.Equal(t, time.Date(2025, time.January, 30, 0, 0, 0, 0, loc), daily[0].Date)
	for i := 1; i < len(daily); i++ {
		assert.Equal(t, daily[i-1].Date.AddDate(0, 0, 1), daily[i].Date)
		assert.True(t, daily[i].Date.After(daily[i-1].Date))
	}
}

func TestPowerTraceShape(t *testing.T) {
	trace := NewGenerator(edgeSource{high: true}, nil).PowerTrace(fixedNow)

	require.Len(t, trace, PowerTracePoints)
	assert.Equal(t, fixedNow, trace[len(trace)-1].Time)
	assert.Equal(t, fixedNow.Add(-59*time.Second), trace[0].Time)
	for i := 1; i < len(trace); i++ {
		assert.Equal(t, time.Second, trace[i].Time.Sub(trace[i-1].Time))
	}
	for _, p := range trace {
		assert.Equal(t, 499, p.PowerKW)
	}
}

func TestActiveSessionsLowestDraws(t *testing.T) {
	g := NewGenerator(edgeSource{}, nil)
	stations := g.Generate(fixedNow).Stations
	sessions := g.ActiveSessions(fixedNow, 3, stations)

	require.Len(t, sessions, 3)
	for _, s := range sessions {
		assert.Equal(t, models.ActiveSession{
			VehicleID:       "KA01EV1000",
			Station:         "Koramangala 5th Block",
			StartTime:       fixedNow.Add(-5 * time.Minute),
			DurationMinutes: 5,
			ChargedKWh:      5,
			Status:          models.SessionStatusCharging,
			ProgressPercent: 20,
		}, s)
		assert.Equal(t, "14:59", s.StartLabel())
	}
}

func TestActiveSessionsHighestDraws(t *testing.T) {
	g := NewGenerator(edgeSource{high: true}, nil)
	stations := g.Generate(fixedNow).Stations
	sessions := g.ActiveSessions(fixedNow, 1, stations)

	require.Len(t, sessions, 1)
	s := sessions[0]
	assert.Equal(t, "KA98EV9998", s.VehicleID)
	assert.Equal(t, "Electronic City", s.Station)
	assert.Equal(t, fixedNow.Add(-59*time.Minute), s.StartTime)
	assert.Equal(t, 59, s.DurationMinutes)
	assert.Equal(t, 49, s.ChargedKWh)
	assert.Equal(t, 94, s.ProgressPercent)
}

func TestActiveSessionsEmptyInputs(t *testing.T) {
	g := NewGenerator(edgeSource{}, nil)
	assert.Empty(t, g.ActiveSessions(fixedNow, 0, g.Generate(fixedNow).Stations))
	assert.Empty(t, g.ActiveSessions(fixedNow, 5, nil))
}

func TestDeltasBounds(t *testing.T) {
	low := NewGenerator(edgeSource{}, nil).Deltas()
	assert.Equal(t, models.MetricDeltas{
		CurrentPowerKW: -50, ActiveSessions: -3, TodayEnergyKWh: 50,
		TodayRevenue: 500, QueueWaiting: -2, AvgWaitTimeMinutes: -5,
	}, low)

	high := NewGenerator(edgeSource{high: true}, nil).Deltas()
	assert.Equal(t, models.MetricDeltas{
		CurrentPowerKW: 49, ActiveSessions: 4, TodayEnergyKWh: 199,
		TodayRevenue: 1999, QueueWaiting: 2, AvgWaitTimeMinutes: 4,
	}, high)
}

func TestCustomRoster(t *testing.T) {
	roster := []StationSpec{{ID: "T-1", Location: "Test", Chargers: 4, RatedPowerKW: 50}}
	g := NewGenerator(edgeSource{high: true}, roster)
	roster[0].Chargers = 99

	stations := g.Generate(fixedNow).Stations
	require.Len(t, stations, 1)
	// 7 drawn, clamped to the 4 chargers present.
	assert.Equal(t, 4, stations[0].Available)
	assert.Equal(t, 0, stations[0].InUse)
	assert.Equal(t, 4, g.Roster()[0].Chargers)
}

func TestEmptyRosterUsesDefault(t *testing.T) {
	g := NewGenerator(edgeSource{}, []StationSpec{})
	assert.Equal(t, DefaultRoster, g.Roster())

	tick := g.Tick(fixedNow)
	require.Len(t, tick.Stations, len(DefaultRoster))
	assert.Len(t, tick.Sessions, tick.Metrics.ActiveSessions)
}

func TestTickProperties(t *testing.T) {
	for i := 0; i < 200; i++ {
		now := fixedNow.Add(time.Duration(i) * 7919 * time.Millisecond)
		tick := NewGenerator(NewTimeSeededSource(now), nil).Tick(now)

		require.Len(t, tick.Stations, 3)
		for _, s := range tick.Stations {
			assert.True(t, s.Available >= 0 && s.Available <= s.Chargers)
			assert.True(t, AvailableRange.Contains(s.Available))
			assert.Equal(t, s.Chargers-s.Available, s.InUse)
			assert.Equal(t, models.UtilizationPercent(s.InUse, s.Chargers), s.Utilization)
			assert.True(t, s.Utilization >= 0 && s.Utilization <= 100)
			assert.True(t, LoadRange.Contains(s.CurrentLoadKW))
			assert.True(t, TemperatureRange.Contains(s.TemperatureC))
		}

		require.Len(t, tick.Daily, DailyHistoryDays)
		for _, d := range tick.Daily {
			assert.True(t, DailyEnergyRange.Contains(d.EnergyKWh))
			assert.True(t, DailySessionsRange.Contains(d.Sessions))
			assert.True(t, DailyRevenueRange.Contains(d.Revenue))
			assert.True(t, DailyDurationRange.Contains(d.AvgDurationMinutes))
		}

		require.Len(t, tick.PowerTrace, PowerTracePoints)
		assert.False(t, tick.PowerTrace[len(tick.PowerTrace)-1].Time.After(now))
		for _, p := range tick.PowerTrace {
			assert.True(t, TracePowerRange.Contains(p.PowerKW))
		}

		m := tick.Metrics
		assert.True(t, CurrentPowerRange.Contains(m.CurrentPowerKW))
		assert.True(t, ActiveSessionsRange.Contains(m.ActiveSessions))
		assert.True(t, TodayEnergyRange.Contains(m.TodayEnergyKWh))
		assert.True(t, TodayRevenueRange.Contains(m.TodayRevenue))
		assert.True(t, QueueWaitingRange.Contains(m.QueueWaiting))
		assert.True(t, AvgWaitTimeRange.Contains(m.AvgWaitTimeMinutes))

		require.Len(t, tick.Sessions, m.ActiveSessions)
		locations := map[string]bool{}
		for _, s := range tick.Stations {
			locations[s.Location] = true
		}
		for _, s := range tick.Sessions {
			assert.True(t, locations[s.Station], s.Station)
			assert.Regexp(t, `^KA\d{2}EV\d{4}$`, s.VehicleID)
			age := now.Sub(s.StartTime)
			assert.True(t, age >= 5*time.Minute && age <= 59*time.Minute)
			assert.True(t, SessionDurationRange.Contains(s.DurationMinutes))
			assert.True(t, SessionChargedRange.Contains(s.ChargedKWh))
			assert.True(t, SessionProgressRange.Contains(s.ProgressPercent))
			assert.Equal(t, models.SessionStatusCharging, s.Status)
		}

		assert.Equal(t, models.SummarizeStations(tick.Stations), tick.Summary)
		assert.Empty(t, tick.ID)
		assert.Equal(t, now, tick.GeneratedAt)
	}
}

func TestTickReturnsFreshSlices(t *testing.T) {
	g := NewGenerator(edgeSource{}, nil)
	a := g.Tick(fixedNow)
	b := g.Tick(fixedNow)
	a.Stations[0].Available = 99
	a.Daily[0].EnergyKWh = -1
	assert.Equal(t, 2, b.Stations[0].Available)
	assert.Equal(t, 800, b.Daily[0].EnergyKWh)
}
