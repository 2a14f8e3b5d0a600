package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// State is the connection lifecycle state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateBackoff      State = "backoff"
)

// RawMessage is an inbound frame from the Connection Manager to the
// Message Router.
type RawMessage struct {
	Data       []byte    // Raw frame bytes from the WebSocket
	ReceivedAt time.Time // Local timestamp when the read returned
}

// Status is a non-blocking snapshot of the manager for health reporting.
type Status struct {
	Connected         bool   `json:"connected"`
	URL               string `json:"url"`
	HeartbeatInterval int    `json:"heartbeat_interval"` // Seconds
}

// heartbeatFrame is the outbound keep-alive payload. The server answers
// with a PONG frame which the router drops.
var heartbeatFrame = []byte(`{"action":"HEARTBEAT"}`)

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL          string        // Feed URL (e.g., wss://ws.opinion.trade)
	APIKey       string        // Appended as the apikey query parameter
	PingTimeout  time.Duration // Max time without a transport ping/pong before the connection is stale
	WriteTimeout time.Duration // Write deadline for sends
	BufferSize   int           // Inbound message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingTimeout:  90 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   1024,
	}
}

// ManagerConfig configures the Connection Manager.
type ManagerConfig struct {
	URL                string        // Feed URL
	APIKey             string        // Feed API key
	HeartbeatInterval  time.Duration // Cadence of outbound heartbeat frames
	ReconnectBaseDelay time.Duration // First backoff delay after a failure
	ReconnectMaxDelay  time.Duration // Backoff cap
	MessageBufferSize  int           // Buffer size of the router-facing frame channel
	Client             ClientConfig  // Transport settings (URL/APIKey filled in from above)
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		HeartbeatInterval:  30 * time.Second,
		ReconnectBaseDelay: 5 * time.Second,
		ReconnectMaxDelay:  60 * time.Second,
		MessageBufferSize:  4096,
		Client:             DefaultClientConfig(),
	}
}
