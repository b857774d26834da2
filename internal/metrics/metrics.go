// Package metrics exposes Prometheus collectors for the registry and the relay.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	connections       prometheus.Gauge
	messagesPersisted prometheus.Counter
	framesRejected    *prometheus.CounterVec
	peersDropped      prometheus.Counter
	membership        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "meetup",
			Name:      "ws_connections",
			Help:      "Open chat WebSocket connections.",
		}),
		messagesPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meetup",
			Name:      "chat_messages_persisted_total",
			Help:      "Chat messages saved and fanned out.",
		}),
		framesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meetup",
			Name:      "ws_frames_rejected_total",
			Help:      "Inbound frames answered with an error frame.",
		}, []string{"reason"}),
		peersDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meetup",
			Name:      "ws_peers_dropped_total",
			Help:      "Connections closed because their outbound queue was full.",
		}),
		membership: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meetup",
			Name:      "membership_operations_total",
			Help:      "Join, leave and remove operations by outcome.",
		}, []string{"op", "outcome"}),
	}
	reg.MustRegister(m.connections, m.messagesPersisted, m.framesRejected, m.peersDropped, m.membership)
	return m
}

func (m *Metrics) ConnectionOpened() {
	if m != nil {
		m.connections.Inc()
	}
}

func (m *Metrics) ConnectionClosed() {
	if m != nil {
		m.connections.Dec()
	}
}

func (m *Metrics) MessagePersisted() {
	if m != nil {
		m.messagesPersisted.Inc()
	}
}

func (m *Metrics) FrameRejected(reason string) {
	if m != nil {
		m.framesRejected.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) PeerDropped() {
	if m != nil {
		m.peersDropped.Inc()
	}
}

func (m *Metrics) Membership(op, outcome string) {
	if m != nil {
		m.membership.WithLabelValues(op, outcome).Inc()
	}
}
