package client

import "github.com/prometheus/client_golang/prometheus"

// metrics are the handle-level counters this module exposes via
// github.com/prometheus/client_golang, the same instrumentation library
// used for node/network state elsewhere in this codebase.
type metrics struct {
	interestsExpressed prometheus.Counter
	interestsReceived  prometheus.Counter
	contentPut         prometheus.Counter
	contentReceived    prometheus.Counter
}

func newMetrics() *metrics {
	return &metrics{
		interestsExpressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ccn", Subsystem: "client", Name: "interests_expressed_total",
			Help: "Interests expressed by this handle.",
		}),
		interestsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ccn", Subsystem: "client", Name: "interests_received_total",
			Help: "Incoming interests received by this handle.",
		}),
		contentPut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ccn", Subsystem: "client", Name: "content_put_total",
			Help: "ContentObjects published via Put.",
		}),
		contentReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ccn", Subsystem: "client", Name: "content_received_total",
			Help: "Incoming ContentObjects dispatched against the PIT.",
		}),
	}
}

func (m *metrics) register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.interestsExpressed, m.interestsReceived, m.contentPut, m.contentReceived} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
