// Package gateway implements the streaming half of the emulator: the
// per-connection protocol state machine, the registry of live sessions, and
// the broadcast dispatcher.
//
// # Protocol
//
// Every connection walks the same handshake. The server sends Hello (op 10)
// with the heartbeat cadence the moment the socket is accepted. The client
// may then heartbeat (op 1, answered with op 11) and must identify (op 2) to
// receive a READY dispatch (op 0) carrying the synthetic bot identity and
// the known guilds. After READY the session receives broadcast dispatches
// such as MESSAGE_CREATE. Frames with unrecognized op codes are ignored.
//
// # Sequence numbers
//
// Dispatch sequence numbers are per-session: each session stamps its own
// strictly increasing counter on every dispatch it is sent, so a client
// always observes s values greater than anything it has seen before on that
// connection. Numbers are never reused.
//
// # Liveness
//
// Heartbeats are acknowledged but never policed, so a silent client is
// never disconnected. The only cancellation point is transport disconnect, which
// unwinds to registry removal from any state.
//
// # Broadcast
//
// Dispatcher.Broadcast snapshots the registry and delivers to each session
// in Ready state. Delivery is best-effort and at-most-once: a failed write
// prunes that session and moves on, and events are never buffered or
// replayed for sessions that connect later.
package gateway
