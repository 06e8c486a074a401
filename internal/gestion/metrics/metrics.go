package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks gestion lifecycle changes.
type Metrics struct {
	GestionCreated     prometheus.Counter
	Activations        prometheus.Counter
	ActiveYear         prometheus.Gauge
	ActivationDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		GestionCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "agrocert_gestiones_created_total",
			Help: "Total number of gestiones created",
		}),
		Activations: factory.NewCounter(prometheus.CounterOpts{
			Name: "agrocert_gestion_activations_total",
			Help: "Total number of system-active gestion switches",
		}),
		ActiveYear: factory.NewGauge(prometheus.GaugeOpts{
			Name: "agrocert_gestion_active_year",
			Help: "Year of the currently system-active gestion",
		}),
		ActivationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "agrocert_gestion_activation_duration_seconds",
			Help:    "Duration of gestion activation transactions",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveActivation records a completed activation. Call with time.Now() at the start.
func (m *Metrics) ObserveActivation(year int, start time.Time) {
	m.Activations.Inc()
	m.ActiveYear.Set(float64(year))
	m.ActivationDuration.Observe(time.Since(start).Seconds())
}
