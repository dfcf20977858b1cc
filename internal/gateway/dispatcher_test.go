// ABOUTME: Tests for broadcast fan-out: ready gating and failed-delivery pruning
// ABOUTME: Uses pipe transports so delivery failures can be injected directly

package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcburgertron/schrodinger-db/internal/store"
)

func readySession(t *testing.T, registry *Registry, id string) (*Session, *pipeTransport) {
	t.Helper()
	s, transport := newTestSession(id)
	s.registry = registry
	require.NoError(t, registry.Register(s))
	s.state.Store(int32(StateReady))
	return s, transport
}

func TestBroadcastReachesOnlyReadySessions(t *testing.T) {
	registry := NewRegistry(nil, nil)
	dispatcher := NewDispatcher(registry, nil, nil)

	_, readyTransport := readySession(t, registry, "ready")

	pending, pendingTransport := newTestSession("pending")
	pending.state.Store(int32(StateAwaitingIdentify))
	require.NoError(t, registry.Register(pending))

	msg := store.Message{ID: "m1", ChannelID: "10", Content: "hello"}
	dispatcher.Broadcast(context.Background(), EventMessageCreate, msg)

	frames := readyTransport.frames()
	require.Len(t, frames, 1)
	assert.Equal(t, OpDispatch, frames[0].Op)
	assert.Equal(t, EventMessageCreate, frames[0].Type)
	assert.Equal(t, msg, frames[0].Data)

	assert.Empty(t, pendingTransport.frames(), "session awaiting identify must not receive dispatches")
	assert.Equal(t, 2, registry.Len(), "skipping a pending session must not deregister it")
}

func TestBroadcastPrunesFailedSessionAndContinues(t *testing.T) {
	registry := NewRegistry(nil, nil)
	dispatcher := NewDispatcher(registry, nil, nil)

	_, brokenTransport := readySession(t, registry, "broken")
	brokenTransport.setWriteErr(errors.New("connection reset"))

	healthy, healthyTransport := readySession(t, registry, "healthy")

	dispatcher.Broadcast(context.Background(), EventMessageCreate, store.Message{ID: "m1"})

	require.Eventually(t, func() bool {
		_, ok := registry.Get("broken")
		return !ok
	}, time.Second, 5*time.Millisecond, "failed session should be deregistered")
	assert.True(t, brokenTransport.closed)

	frames := healthyTransport.frames()
	require.Len(t, frames, 1, "delivery failure must not abort the rest of the broadcast")
	assert.Equal(t, EventMessageCreate, frames[0].Type)

	got, ok := registry.Get("healthy")
	require.True(t, ok)
	assert.Same(t, healthy, got)
}

func TestBroadcastSequencesAreIndependentPerSession(t *testing.T) {
	registry := NewRegistry(nil, nil)
	dispatcher := NewDispatcher(registry, nil, nil)

	early, earlyTransport := readySession(t, registry, "early")
	early.seq.Store(4)

	_, lateTransport := readySession(t, registry, "late")

	dispatcher.Broadcast(context.Background(), EventMessageCreate, store.Message{ID: "m1"})

	earlyFrames := earlyTransport.frames()
	lateFrames := lateTransport.frames()
	require.Len(t, earlyFrames, 1)
	require.Len(t, lateFrames, 1)
	assert.Equal(t, int64(5), earlyFrames[0].Seq)
	assert.Equal(t, int64(1), lateFrames[0].Seq)
}

func TestBroadcastWithEmptyRegistryIsANoOp(t *testing.T) {
	registry := NewRegistry(nil, nil)
	dispatcher := NewDispatcher(registry, nil, nil)

	dispatcher.Broadcast(context.Background(), EventMessageCreate, store.Message{ID: "m1"})

	assert.Equal(t, 0, registry.Len())
}
