package models

import "time"

// PowerPoint is one sample of the per-second power trace.
type PowerPoint struct {
	Time    time.Time `json:"time"`
	PowerKW int       `json:"power_kw"`
}

// DailyStat is one day of the historical series.
type DailyStat struct {
	Date               time.Time `json:"date"`
	EnergyKWh          int       `json:"energy_kwh"`
	Sessions           int       `json:"sessions"`
	Revenue            int       `json:"revenue"`
	AvgDurationMinutes int       `json:"avg_duration_min"`
}

// RealtimeMetrics are the headline scalars of a tick. They are drawn
// independently of the station table and the session list.
type RealtimeMetrics struct {
	CurrentPowerKW     int `json:"current_power"`
	ActiveSessions     int `json:"active_sessions"`
	TodayEnergyKWh     int `json:"today_energy"`
	TodayRevenue       int `json:"today_revenue"`
	QueueWaiting       int `json:"queue_waiting"`
	AvgWaitTimeMinutes int `json:"avg_wait_time"`
}

// MetricDeltas is the change indicator shown next to each headline scalar.
type MetricDeltas struct {
	CurrentPowerKW     int `json:"current_power"`
	ActiveSessions     int `json:"active_sessions"`
	TodayEnergyKWh     int `json:"today_energy"`
	TodayRevenue       int `json:"today_revenue"`
	QueueWaiting       int `json:"queue_waiting"`
	AvgWaitTimeMinutes int `json:"avg_wait_time"`
}

const SessionStatusCharging = "Charging"

// ActiveSession is a vehicle currently charging. DurationMinutes is drawn on
// its own and does not have to match the time elapsed since StartTime.
type ActiveSession struct {
	VehicleID       string    `json:"vehicle_id"`
	Station         string    `json:"station"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_min"`
	ChargedKWh      int       `json:"charged_kwh"`
	Status          string    `json:"status"`
	ProgressPercent int       `json:"progress"`
}

// StartLabel formats the start time as HH:MM.
func (s ActiveSession) StartLabel() string {
	return s.StartTime.Format("15:04")
}

// Tick is everything produced by one refresh cycle.
type Tick struct {
	ID          string          `json:"id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Stations    []StationStatus `json:"stations"`
	Summary     StationSummary  `json:"station_summary"`
	Daily       []DailyStat     `json:"daily"`
	Metrics     RealtimeMetrics `json:"metrics"`
	Deltas      MetricDeltas    `json:"deltas"`
	PowerTrace  []PowerPoint    `json:"power_trace"`
	Sessions    []ActiveSession `json:"sessions"`
}
