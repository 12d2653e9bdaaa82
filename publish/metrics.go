package publish

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "market"

type Metrics struct {
	Freezes        prometheus.Counter
	SizeRejections prometheus.Counter
	Estimates      prometheus.Counter
	PrimarySends   *prometheus.CounterVec
	DependentSends *prometheus.CounterVec
}

// NewMetrics builds the publish metrics and registers them with reg when it
// is not nil.
func NewMetrics(reg prometheus.Registerer) (m *Metrics) {
	m = &Metrics{
		Freezes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "publish",
			Name:      "freezes_total",
			Help:      "Drafts frozen with a content hash.",
		}),
		SizeRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "publish",
			Name:      "size_rejections_total",
			Help:      "Posts refused because the message exceeds the network limit.",
		}),
		Estimates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "publish",
			Name:      "estimates_total",
			Help:      "Fee estimations served without sending.",
		}),
		PrimarySends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "publish",
			Name:      "primary_sends_total",
			Help:      "Primary message sends by action type and outcome.",
		}, []string{"type", "outcome"}),
		DependentSends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "publish",
			Name:      "dependent_sends_total",
			Help:      "Dependent message sends by action type and outcome.",
		}, []string{"type", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.Freezes, m.SizeRejections, m.Estimates, m.PrimarySends, m.DependentSends)
	}
	return
}

func outcome(err error) string {
	if err != nil {
		return "fail"
	}
	return "ok"
}
