package telemetry

// Range is an inclusive integer interval.
type Range struct {
	Min int
	Max int
}

// Contains reports whether v lies in the range.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Station readings.
var (
	AvailableRange   = Range{2, 7}
	LoadRange        = Range{50, 149}
	TemperatureRange = Range{28, 44}
)

// Daily history.
var (
	DailyEnergyRange   = Range{800, 2499}
	DailySessionsRange = Range{80, 199}
	DailyRevenueRange  = Range{15000, 44999}
	DailyDurationRange = Range{35, 74}
)

// Power trace.
var TracePowerRange = Range{200, 499}

// Headline metrics.
var (
	CurrentPowerRange   = Range{250, 449}
	ActiveSessionsRange = Range{8, 24}
	TodayEnergyRange    = Range{1200, 1799}
	TodayRevenueRange   = Range{25000, 34999}
	QueueWaitingRange   = Range{0, 7}
	AvgWaitTimeRange    = Range{5, 24}
)

// Metric deltas.
var (
	DeltaPowerRange    = Range{-50, 49}
	DeltaSessionsRange = Range{-3, 4}
	DeltaEnergyRange   = Range{50, 199}
	DeltaRevenueRange  = Range{500, 1999}
	DeltaQueueRange    = Range{-2, 2}
	DeltaWaitRange     = Range{-5, 4}
)

// Active sessions.
var (
	SessionAgeRange      = Range{5, 59}
	SessionDurationRange = Range{5, 59}
	SessionChargedRange  = Range{5, 49}
	SessionProgressRange = Range{20, 94}
	PlateDistrictRange   = Range{1, 98}
	PlateNumberRange     = Range{1000, 9998}
)

const (
	DailyHistoryDays = 31
	PowerTracePoints = 60
)
