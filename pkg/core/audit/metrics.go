package audit

import "github.com/prometheus/client_golang/prometheus"

const (
	dropOverflow = "overflow"
	dropClosed   = "closed"
)

type Metrics struct {
	enqueued prometheus.Counter
	dropped  *prometheus.CounterVec
	written  prometheus.Counter
	failed   prometheus.Counter
}

// NewMetrics builds the audit counters and registers them on reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		enqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "focus",
			Subsystem: "audit",
			Name:      "changes_enqueued_total",
			Help:      "Change descriptions accepted by the audit queue",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "focus",
			Subsystem: "audit",
			Name:      "changes_dropped_total",
			Help:      "Change descriptions discarded before being stored",
		}, []string{"reason"}),
		written: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "focus",
			Subsystem: "audit",
			Name:      "entries_written_total",
			Help:      "Audit log entries stored",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "focus",
			Subsystem: "audit",
			Name:      "write_failures_total",
			Help:      "Audit log writes that returned an error",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.enqueued, m.dropped, m.written, m.failed)
	}
	return m
}
