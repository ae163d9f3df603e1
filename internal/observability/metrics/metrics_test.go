package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClientMetrics(reg)

	m.ObserveInbound("/user/queue/chat", "accepted")
	m.ObserveInbound("/user/queue/chat", "accepted")
	m.ObserveConnect("success")
	m.ObservePublish("/app/chat.sendMessage", "sent")
	m.ObserveSuppressed("throttled")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.inboundTotal.WithLabelValues("/user/queue/chat", "accepted")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.connectTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.publishTotal.WithLabelValues("/app/chat.sendMessage", "sent")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.suppressedTotal.WithLabelValues("throttled")))
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *ClientMetrics
	m.ObserveInbound("x", "y")
	m.ObserveConnect("failure")
	m.ObservePublish("x", "y")
	m.ObserveSuppressed("silenced")
}
