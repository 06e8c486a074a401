package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the inspection workflow.
type Metrics struct {
	FichasCreated    prometheus.Counter
	FichasSubmitted  prometheus.Counter
	Decisions        *prometheus.CounterVec
	ValidationFailed *prometheus.CounterVec
	PlanningWarnings prometheus.Counter
	Uploads          *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FichasCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "agrocert_fichas_created_total",
			Help: "Total number of fichas created",
		}),
		FichasSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "agrocert_fichas_submitted_total",
			Help: "Total number of fichas sent to review",
		}),
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agrocert_ficha_decisions_total",
			Help: "Certification decisions by outcome",
		}, []string{"resultado"}),
		ValidationFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agrocert_ficha_validation_failures_total",
			Help: "Rejected ficha writes by operation",
		}, []string{"operation"}),
		PlanningWarnings: factory.NewCounter(prometheus.CounterOpts{
			Name: "agrocert_ficha_planning_warnings_total",
			Help: "Sowing plans flagged above the parcel area tolerance",
		}),
		Uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agrocert_ficha_uploads_total",
			Help: "Attachment uploads by resulting state",
		}, []string{"estado"}),
	}
}
