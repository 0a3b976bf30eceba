// Package metrics exposes kiosk counters in Prometheus format.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soyeahso/boothbot/internal/hooks"
)

const namespace = "boothbot"

// Metrics holds the kiosk collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	sessionsStarted prometheus.Counter
	sessionsEnded   prometheus.Counter
	activeSessions  prometheus.Gauge
	leadsCaptured   prometheus.Counter
	toolCalls       *prometheus.CounterVec
	deliveries      *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Visitor sessions started.",
		}),
		sessionsEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_ended_total",
			Help:      "Visitor sessions ended.",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Visitor sessions currently open.",
		}),
		leadsCaptured: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leads_captured_total",
			Help:      "Leads captured with consent.",
		}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool name.",
		}, []string{"tool"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Delivery attempts by sink and outcome.",
		}, []string{"sink", "ok"}),
	}
	m.registry.MustRegister(
		m.sessionsStarted,
		m.sessionsEnded,
		m.activeSessions,
		m.leadsCaptured,
		m.toolCalls,
		m.deliveries,
	)
	return m
}

// Subscribe feeds the collectors from hook events.
func (m *Metrics) Subscribe(h *hooks.Manager) {
	h.On(hooks.EventSessionStart, "metrics", func(_ context.Context, _ hooks.Payload) error {
		m.sessionsStarted.Inc()
		m.activeSessions.Inc()
		return nil
	})
	h.On(hooks.EventSessionEnd, "metrics", func(_ context.Context, _ hooks.Payload) error {
		m.sessionsEnded.Inc()
		m.activeSessions.Dec()
		return nil
	})
	h.On(hooks.EventLeadCaptured, "metrics", func(_ context.Context, _ hooks.Payload) error {
		m.leadsCaptured.Inc()
		return nil
	})
	h.On(hooks.EventToolCalled, "metrics", func(_ context.Context, p hooks.Payload) error {
		m.toolCalls.WithLabelValues(p.Str(hooks.KeyTool)).Inc()
		return nil
	})
	h.On(hooks.EventDelivery, "metrics", func(_ context.Context, p hooks.Payload) error {
		m.deliveries.WithLabelValues(p.Str(hooks.KeySink), strconv.FormatBool(p.Bool(hooks.KeyOK))).Inc()
		return nil
	})
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
