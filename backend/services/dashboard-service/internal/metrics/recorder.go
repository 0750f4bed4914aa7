package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"evdash/backend/services/dashboard-service/internal/models"
)

const namespace = "evdash"

// Recorder exports tick figures as Prometheus metrics. It is both a feed
// publisher and a feed observer.
type Recorder struct {
	registry *prometheus.Registry

	ticks              prometheus.Counter
	generationSeconds  prometheus.Histogram
	publishErrors      *prometheus.CounterVec
	currentPower       prometheus.Gauge
	activeSessions     prometheus.Gauge
	queueWaiting       prometheus.Gauge
	stationUtilization *prometheus.GaugeVec
	stationLoad        *prometheus.GaugeVec
	stationTemperature *prometheus.GaugeVec
	wsClients          prometheus.Gauge
}

// NewRecorder registers the collectors on a private registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		ticks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Number of refresh cycles produced.",
		}),
		generationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_generation_seconds",
			Help:      "Time spent generating one tick.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		publishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed tick deliveries by publisher.",
		}, []string{"publisher"}),
		currentPower: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_power_kw",
			Help:      "Current total power draw.",
		}),
		activeSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Active charging sessions.",
		}),
		queueWaiting: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_waiting",
			Help:      "Vehicles waiting for a charger.",
		}),
		stationUtilization: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "station_utilization_percent",
			Help:      "Share of chargers in use per station.",
		}, []string{"station_id"}),
		stationLoad: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "station_load_kw",
			Help:      "Current load per station.",
		}, []string{"station_id"}),
		stationTemperature: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "station_temperature_celsius",
			Help:      "Cabinet temperature per station.",
		}, []string{"station_id"}),
		wsClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_clients",
			Help:      "Connected live dashboard clients.",
		}),
	}
}

// Name identifies the recorder as a publisher.
func (r *Recorder) Name() string { return "metrics" }

// Publish updates the gauges from the tick.
func (r *Recorder) Publish(_ context.Context, tick *models.Tick) error {
	r.ticks.Inc()
	r.currentPower.Set(float64(tick.Metrics.CurrentPowerKW))
	r.activeSessions.Set(float64(tick.Metrics.ActiveSessions))
	r.queueWaiting.Set(float64(tick.Metrics.QueueWaiting))
	for _, s := range tick.Stations {
		labels := prometheus.Labels{"station_id": s.StationID}
		r.stationUtilization.With(labels).Set(s.Utilization)
		r.stationLoad.With(labels).Set(float64(s.CurrentLoadKW))
		r.stationTemperature.With(labels).Set(float64(s.TemperatureC))
	}
	return nil
}

// ObserveGeneration records how long a tick took to build.
func (r *Recorder) ObserveGeneration(d time.Duration) {
	r.generationSeconds.Observe(d.Seconds())
}

// ObservePublishError counts a failed delivery.
func (r *Recorder) ObservePublishError(publisher string) {
	if publisher == "" {
		return
	}
	r.publishErrors.With(prometheus.Labels{"publisher": publisher}).Inc()
}

// SetClients reports the number of connected WebSocket clients.
func (r *Recorder) SetClients(n int) {
	r.wsClients.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
