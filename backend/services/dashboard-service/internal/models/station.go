package models

import "math"

const (
	StationStatusActive = "Active"

	busyUtilizationPercent = 70
	hotTemperatureCelsius  = 40
)

// StationStatus is one station's state for a single tick.
type StationStatus struct {
	StationID     string  `json:"station_id"`
	Location      string  `json:"location"`
	Status        string  `json:"status"`
	Chargers      int     `json:"chargers"`
	RatedPowerKW  int     `json:"power_kw"`
	Available     int     `json:"available"`
	InUse         int     `json:"in_use"`
	Utilization   float64 `json:"utilization"`
	CurrentLoadKW int     `json:"current_load_kw"`
	TemperatureC  int     `json:"temperature_c"`
}

// StationReading carries the drawn values a status is derived from.
type StationReading struct {
	Available     int
	CurrentLoadKW int
	TemperatureC  int
}

// NewStationStatus derives in-use and utilization from the reading. Available
// is clamped into [0, chargers] so in-use never goes negative.
func NewStationStatus(stationID, location string, chargers, ratedPowerKW int, r StationReading) StationStatus {
	if chargers < 0 {
		chargers = 0
	}
	available := r.Available
	if available < 0 {
		available = 0
	}
	if available > chargers {
		available = chargers
	}
	inUse := chargers - available

	return StationStatus{
		StationID:     stationID,
		Location:      location,
		Status:        StationStatusActive,
		Chargers:      chargers,
		RatedPowerKW:  ratedPowerKW,
		Available:     available,
		InUse:         inUse,
		Utilization:   UtilizationPercent(inUse, chargers),
		CurrentLoadKW: r.CurrentLoadKW,
		TemperatureC:  r.TemperatureC,
	}
}

// UtilizationPercent returns inUse/total*100 rounded to one decimal.
func UtilizationPercent(inUse, total int) float64 {
	if total <= 0 {
		return 0
	}
	return Round1(float64(inUse) / float64(total) * 100)
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Busy reports a utilization of 70% or more.
func (s StationStatus) Busy() bool {
	return s.Utilization >= busyUtilizationPercent
}

// Hot reports a temperature of 40°C or more.
func (s StationStatus) Hot() bool {
	return s.TemperatureC >= hotTemperatureCelsius
}

// StationSummary aggregates the station table of one tick.
type StationSummary struct {
	ActiveStations     int     `json:"active_stations"`
	TotalChargers      int     `json:"total_chargers"`
	AvailableNow       int     `json:"available_now"`
	AverageUtilization float64 `json:"average_utilization"`
}

// SummarizeStations computes the historical tab headline figures.
func SummarizeStations(stations []StationStatus) StationSummary {
	var sum StationSummary
	var util float64
	for _, s := range stations {
		if s.Status == StationStatusActive {
			sum.ActiveStations++
		}
		sum.TotalChargers += s.Chargers
		sum.AvailableNow += s.Available
		util += s.Utilization
	}
	if len(stations) > 0 {
		sum.AverageUtilization = Round1(util / float64(len(stations)))
	}
	return sum
}
