// ABOUTME: Prometheus instrumentation for sessions, dispatches, and HTTP traffic
// ABOUTME: Uses a private registry so parallel test servers never collide

package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the emulator's instrumentation. All methods are safe on a
// nil receiver so components can run without metrics wired in.
type Metrics struct {
	registry *prometheus.Registry

	sessionsConnected prometheus.Gauge
	eventsDispatched  *prometheus.CounterVec
	sessionsPruned    prometheus.Counter
	httpRequests      *prometheus.CounterVec
}

// New creates a metrics set backed by its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		sessionsConnected: factory.NewGauge(prometheus.GaugeOpts{
			Name: "discordemu_sessions_connected",
			Help: "Number of gateway sessions currently registered.",
		}),
		eventsDispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "discordemu_events_dispatched_total",
			Help: "Dispatch frames delivered to sessions, by event type.",
		}, []string{"event"}),
		sessionsPruned: factory.NewCounter(prometheus.CounterOpts{
			Name: "discordemu_sessions_pruned_total",
			Help: "Sessions deregistered after a failed broadcast delivery.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "discordemu_http_requests_total",
			Help: "API requests served, by route and status code.",
		}, []string{"route", "code"}),
	}
}

// Handler returns the scrape endpoint handler for this metrics set.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SessionConnected records a session registration.
func (m *Metrics) SessionConnected() {
	if m == nil {
		return
	}
	m.sessionsConnected.Inc()
}

// SessionDisconnected records a session deregistration.
func (m *Metrics) SessionDisconnected() {
	if m == nil {
		return
	}
	m.sessionsConnected.Dec()
}

// EventDispatched records one delivered dispatch frame.
func (m *Metrics) EventDispatched(event string) {
	if m == nil {
		return
	}
	m.eventsDispatched.WithLabelValues(event).Inc()
}

// SessionPruned records a session dropped after a delivery failure.
func (m *Metrics) SessionPruned() {
	if m == nil {
		return
	}
	m.sessionsPruned.Inc()
}

// HTTPRequest records one served API request.
func (m *Metrics) HTTPRequest(route string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
