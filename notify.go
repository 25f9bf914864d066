package mcpfs

import (
	"encoding/json"
	"fmt"
)

// NotificationFunc handles an inbound one-way message.
type NotificationFunc func(method string, params json.RawMessage) error

// Notification method names recognized on the inbound stream.
const (
	MethodInitialized = "notifications/initialized"
	MethodCancelled   = "notifications/cancelled"
)

// Dispatcher routes inbound notifications to registered observers.
// Notifications never produce a reply; observer errors are reported to the
// caller for logging only.
type Dispatcher struct {
	handlers map[string][]NotificationFunc
}

// NewDispatcher creates a new notification dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]NotificationFunc),
	}
}

// Handle registers a handler for a notification method.
func (d *Dispatcher) Handle(method string, fn NotificationFunc) {
	d.handlers[method] = append(d.handlers[method], fn)
}

// Dispatch delivers a notification to the handlers registered for method,
// in registration order, stopping at the first handler error.
func (d *Dispatcher) Dispatch(method string, params json.RawMessage) error {
	for _, fn := range d.handlers[method] {
		if err := fn(method, params); err != nil {
			return fmt.Errorf("handler error: %w", err)
		}
	}
	return nil
}
