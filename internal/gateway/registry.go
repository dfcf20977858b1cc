// ABOUTME: Tracks live gateway sessions from accept to disconnect
// ABOUTME: Central registry used by the dispatcher for broadcast fan-out

package gateway

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/mcburgertron/schrodinger-db/internal/metrics"
)

// ErrSessionAlreadyRegistered indicates a session with the same ID is already tracked.
var ErrSessionAlreadyRegistered = errors.New("session already registered")

// Registry tracks every live session. A session appears here from accept
// until disconnect and never twice.
type Registry struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewRegistry creates an empty session registry. Pass nil for a default logger.
func NewRegistry(m *metrics.Metrics, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		metrics:  m,
		logger:   logger.With("component", "session-registry"),
	}
}

// Register adds a new session to the registry.
// Returns ErrSessionAlreadyRegistered if a session with the same ID exists.
func (r *Registry) Register(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[s.ID]; exists {
		return ErrSessionAlreadyRegistered
	}

	r.sessions[s.ID] = s
	r.metrics.SessionConnected()
	r.logger.Info("session connected",
		"session_id", s.ID,
		"total_sessions", len(r.sessions),
	)
	return nil
}

// Unregister removes a session from the registry. Removing an unknown ID is
// a no-op so disconnect paths stay idempotent.
func (r *Registry) Unregister(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[sessionID]; exists {
		delete(r.sessions, sessionID)
		r.metrics.SessionDisconnected()
		r.logger.Info("session disconnected",
			"session_id", sessionID,
			"total_sessions", len(r.sessions),
		)
	}
}

// Get retrieves a session by ID.
func (r *Registry) Get(sessionID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	return s, ok
}

// Snapshot returns a copied slice of the current sessions. Broadcast
// iterates the copy, so sessions disconnecting mid-broadcast cannot corrupt
// the registry or skip unrelated deliveries.
func (r *Registry) Snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll closes every live session and empties the registry. Used during
// server shutdown.
func (r *Registry) CloseAll() {
	for _, s := range r.Snapshot() {
		s.Close()
		r.Unregister(s.ID)
	}
}
