package mcpfs

import "github.com/google/uuid"

// Session is the per-connection mutable state. It is created when Serve
// starts, mutated only by the initialize handler and discarded when the
// stream ends. Requests arriving before initialize are still served; the
// reference server never enforced handshake ordering and that permissive
// behavior is kept for compatibility.
type Session struct {
	ID          string
	Initialized bool
	ClientInfo  *Implementation
}

// NewSession creates a fresh uninitialized session with a unique id. The id
// only appears in log output; it is never sent on the wire.
func NewSession() *Session {
	return &Session{ID: uuid.NewString()}
}
