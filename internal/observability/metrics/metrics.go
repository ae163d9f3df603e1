package metrics

import "github.com/prometheus/client_golang/prometheus"

// ClientMetrics exposes counters for the real-time client core.
type ClientMetrics struct {
	inboundTotal    *prometheus.CounterVec
	connectTotal    *prometheus.CounterVec
	publishTotal    *prometheus.CounterVec
	suppressedTotal *prometheus.CounterVec
}

func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	m := &ClientMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "push",
			Name:      "inbound_events_total",
			Help:      "Inbound push events by destination and outcome",
		}, []string{"destination", "outcome"}),
		connectTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "push",
			Name:      "connect_attempts_total",
			Help:      "Transport connect attempts by result",
		}, []string{"result"}),
		publishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "push",
			Name:      "publish_total",
			Help:      "Outbound publishes by destination and result",
		}, []string{"destination", "result"}),
		suppressedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "notify",
			Name:      "suppressed_errors_total",
			Help:      "Error notifications kept off the primary surface",
		}, []string{"reason"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.connectTotal, m.publishTotal, m.suppressedTotal)
	return m
}

func (m *ClientMetrics) ObserveInbound(destination, outcome string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(destination, outcome).Inc()
}

func (m *ClientMetrics) ObserveConnect(result string) {
	if m == nil {
		return
	}
	m.connectTotal.WithLabelValues(result).Inc()
}

func (m *ClientMetrics) ObservePublish(destination, result string) {
	if m == nil {
		return
	}
	m.publishTotal.WithLabelValues(destination, result).Inc()
}

// ObserveSuppressed records an error kept off the primary notification
// surface; reason is "throttled" or "silenced".
func (m *ClientMetrics) ObserveSuppressed(reason string) {
	if m == nil {
		return
	}
	m.suppressedTotal.WithLabelValues(reason).Inc()
}
