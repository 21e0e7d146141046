package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's prometheus metrics.
type Metrics struct {
	RequestsCreated   prometheus.Counter
	RequestsDeleted   prometheus.Counter
	Transitions       *prometheus.CounterVec
	TransitionsFailed *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	return &Metrics{
		RequestsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_created_total",
			Help:      "The total number of submitted travel requests",
		}),
		RequestsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_deleted_total",
			Help:      "The total number of deleted travel requests",
		}),
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Applied status transitions by target status",
		}, []string{"to_status"}),
		TransitionsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_failed_total",
			Help:      "Rejected status transitions by error code",
		}, []string{"code"}),
	}
}
