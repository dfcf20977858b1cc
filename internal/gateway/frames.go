// ABOUTME: Wire frame envelope and payload types for the gateway protocol
// ABOUTME: Op codes and event names are fixed by the emulated vendor format

package gateway

// Gateway op codes.
const (
	OpDispatch     = 0  // server -> client event frame
	OpHeartbeat    = 1  // client -> server keepalive
	OpIdentify     = 2  // client -> server handshake request
	OpHello        = 10 // server -> client, sent immediately on accept
	OpHeartbeatAck = 11 // server -> client heartbeat reply
)

// Dispatch event names.
const (
	EventReady         = "READY"
	EventMessageCreate = "MESSAGE_CREATE"
)

// Frame is the envelope carried by every gateway payload in both directions.
// Data is decoded lazily: inbound frames never carry payloads the emulator
// inspects, and outbound frames set Data to any JSON-marshalable value.
type Frame struct {
	Op   int    `json:"op"`
	Type string `json:"t,omitempty"`
	Seq  int64  `json:"s,omitempty"`
	Data any    `json:"d,omitempty"`
}

// HelloData is the payload of the Hello frame, announcing heartbeat cadence
// in milliseconds.
type HelloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

// ReadyData is the payload of the READY dispatch: the synthetic bot identity
// plus references to every guild known at identify time.
type ReadyData struct {
	User   BotUser    `json:"user"`
	Guilds []GuildRef `json:"guilds"`
}

// BotUser is the fixed actor identity every connection identifies as.
type BotUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// GuildRef is a guild reference carried in the READY payload.
type GuildRef struct {
	ID string `json:"id"`
}

// EmulatorBot is the synthetic identity reported in READY dispatches.
var EmulatorBot = BotUser{ID: "999", Username: "bot"}
