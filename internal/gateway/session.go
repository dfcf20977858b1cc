// ABOUTME: Per-connection protocol state machine for the streaming gateway
// ABOUTME: Drives hello, heartbeat, identify/ready, and dispatch delivery

package gateway

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/samber/lo"

	"github.com/mcburgertron/schrodinger-db/internal/config"
	"github.com/mcburgertron/schrodinger-db/internal/store"
)

// StatusAlreadyIdentified is the close code sent when the reject policy
// refuses a repeated Identify.
const StatusAlreadyIdentified = websocket.StatusCode(4005)

// ErrSessionNotReady indicates a dispatch was attempted before the session
// completed its identify handshake.
var ErrSessionNotReady = errors.New("session not ready")

// errReidentifyRejected terminates the read loop after a refused Identify.
var errReidentifyRejected = errors.New("re-identify rejected")

// State is a session's position in the gateway handshake lifecycle.
type State int32

// Session lifecycle states. A session moves strictly forward: Closed is
// terminal and reachable from every other state via transport disconnect.
const (
	StateConnected State = iota
	StateAwaitingIdentify
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateAwaitingIdentify:
		return "awaiting_identify"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// GuildLister provides the guild snapshot embedded in READY dispatches.
type GuildLister interface {
	Guilds() []store.Guild
}

// Session represents one live streaming connection. Writes are serialized by
// a mutex so the client observes frames in send order, and every dispatch is
// stamped with the session's next sequence number.
type Session struct {
	ID string

	transport         Transport
	guilds            GuildLister
	registry          *Registry
	heartbeatInterval time.Duration
	reidentify        string
	logger            *slog.Logger

	writeMu sync.Mutex
	state   atomic.Int32
	seq     atomic.Int64
}

// SessionParams bundles the dependencies for NewSession.
type SessionParams struct {
	ID                string
	Transport         Transport
	Guilds            GuildLister
	Registry          *Registry
	HeartbeatInterval time.Duration
	Reidentify        string
	Logger            *slog.Logger
}

// NewSession creates a session in the Connected state. The caller registers
// it and then runs Serve.
func NewSession(p SessionParams) *Session {
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.Reidentify == "" {
		p.Reidentify = config.ReidentifyReissue
	}
	s := &Session{
		ID:                p.ID,
		transport:         p.Transport,
		guilds:            p.Guilds,
		registry:          p.Registry,
		heartbeatInterval: p.HeartbeatInterval,
		reidentify:        p.Reidentify,
		logger:            p.Logger.With("session_id", p.ID),
	}
	s.state.Store(int32(StateConnected))
	return s
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Seq returns the last sequence number stamped on a dispatch.
func (s *Session) Seq() int64 {
	return s.seq.Load()
}

// Serve sends the Hello frame and then reads frames until the transport
// closes or a fatal protocol violation occurs. It always unwinds to registry
// deregistration, whatever state the session was in.
func (s *Session) Serve(ctx context.Context) {
	defer s.shutdown()

	hello := Frame{
		Op:   OpHello,
		Data: HelloData{HeartbeatInterval: int(s.heartbeatInterval.Milliseconds())},
	}
	if err := s.write(ctx, hello); err != nil {
		s.logger.Debug("hello write failed", "error", err)
		return
	}
	s.state.Store(int32(StateAwaitingIdentify))

	for {
		var frame Frame
		if err := s.transport.ReadJSON(ctx, &frame); err != nil {
			s.logger.Debug("session read ended", "error", err)
			return
		}
		if err := s.handleFrame(ctx, frame); err != nil {
			return
		}
	}
}

// handleFrame processes one inbound frame. Unrecognized op codes are
// silently ignored so the session survives protocol noise.
func (s *Session) handleFrame(ctx context.Context, frame Frame) error {
	switch frame.Op {
	case OpHeartbeat:
		return s.write(ctx, Frame{Op: OpHeartbeatAck})

	case OpIdentify:
		return s.handleIdentify(ctx)

	default:
		s.logger.Debug("ignoring unrecognized op", "op", frame.Op, "state", s.State().String())
		return nil
	}
}

// handleIdentify answers an Identify frame with a READY dispatch. A repeated
// Identify on an already-ready session follows the configured policy:
// reissue a fresh READY, or refuse and close the connection.
func (s *Session) handleIdentify(ctx context.Context) error {
	if s.State() == StateReady && s.reidentify == config.ReidentifyReject {
		s.logger.Warn("closing session on repeated identify")
		_ = s.transport.Close(StatusAlreadyIdentified, "already identified")
		return errReidentifyRejected
	}

	ready := ReadyData{
		User: EmulatorBot,
		Guilds: lo.Map(s.guilds.Guilds(), func(g store.Guild, _ int) GuildRef {
			return GuildRef{ID: g.ID}
		}),
	}
	frame := Frame{
		Op:   OpDispatch,
		Type: EventReady,
		Seq:  s.seq.Add(1),
		Data: ready,
	}
	if err := s.write(ctx, frame); err != nil {
		return err
	}

	s.state.Store(int32(StateReady))
	s.logger.Info("session ready", "seq", frame.Seq)
	return nil
}

// SendDispatch delivers a broadcast event to this session, stamping the next
// sequence number. Sessions that have not completed identify are skipped
// with ErrSessionNotReady.
func (s *Session) SendDispatch(ctx context.Context, eventType string, data any) error {
	if s.State() != StateReady {
		return ErrSessionNotReady
	}
	frame := Frame{
		Op:   OpDispatch,
		Type: eventType,
		Seq:  s.seq.Add(1),
		Data: data,
	}
	return s.write(ctx, frame)
}

// Close tears the session down from the server side.
func (s *Session) Close() {
	s.state.Store(int32(StateClosed))
	_ = s.transport.Close(websocket.StatusNormalClosure, "server closing")
}

// write serializes frame writes so per-connection FIFO order holds even when
// broadcasts interleave with heartbeat replies.
func (s *Session) write(ctx context.Context, frame Frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.transport.WriteJSON(ctx, frame)
}

// shutdown moves the session to its terminal state and deregisters it.
func (s *Session) shutdown() {
	s.state.Store(int32(StateClosed))
	if s.registry != nil {
		s.registry.Unregister(s.ID)
	}
	_ = s.transport.Close(websocket.StatusNormalClosure, "")
	s.logger.Debug("session closed")
}
