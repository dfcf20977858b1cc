// ABOUTME: Best-effort broadcast of dispatch frames to all ready sessions
// ABOUTME: Prunes sessions whose transport fails; never fails the caller

package gateway

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcburgertron/schrodinger-db/internal/metrics"
)

// Dispatcher fans a dispatch event out to every live session. Delivery is
// at-most-once per connected session: nothing is buffered, retried, or
// replayed for sessions that connect later.
type Dispatcher struct {
	registry *Registry
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher over the given registry. Pass nil for a
// default logger.
func NewDispatcher(registry *Registry, m *metrics.Metrics, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		registry: registry,
		metrics:  m,
		logger:   logger.With("component", "dispatcher"),
	}
}

// Broadcast delivers an event to every session that has completed identify.
// Sessions still awaiting identify are skipped; delivery failures deregister
// the affected session and never abort delivery to the rest.
func (d *Dispatcher) Broadcast(ctx context.Context, eventType string, data any) {
	sessions := d.registry.Snapshot()
	for _, s := range sessions {
		err := s.SendDispatch(ctx, eventType, data)
		if errors.Is(err, ErrSessionNotReady) {
			d.logger.Debug("skipping session awaiting identify",
				"session_id", s.ID,
				"event", eventType,
			)
			continue
		}
		if err != nil {
			d.logger.Warn("pruning session after failed delivery",
				"session_id", s.ID,
				"event", eventType,
				"error", err,
			)
			d.registry.Unregister(s.ID)
			s.Close()
			d.metrics.SessionPruned()
			continue
		}
		d.metrics.EventDispatched(eventType)
	}
}
