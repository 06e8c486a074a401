package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks nonconformity follow-up.
type Metrics struct {
	Created         prometheus.Counter
	Transitions     *prometheus.CounterVec
	Reopened        prometheus.Counter
	EvidenceByState *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Created: factory.NewCounter(prometheus.CounterOpts{
			Name: "agrocert_no_conformidades_created_total",
			Help: "Total number of nonconformities recorded",
		}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agrocert_follow_up_updates_total",
			Help: "Follow-up updates by resulting state",
		}, []string{"estado"}),
		Reopened: factory.NewCounter(prometheus.CounterOpts{
			Name: "agrocert_follow_up_reopened_total",
			Help: "Follow-up updates that moved a nonconformity backwards",
		}),
		EvidenceByState: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agrocert_evidence_uploads_total",
			Help: "Evidence uploads by resulting state",
		}, []string{"estado"}),
	}
}
