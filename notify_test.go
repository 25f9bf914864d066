package mcpfs

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDispatcherDeliversToAllHandlers(t *testing.T) {
	d := NewDispatcher()

	var calls []string
	d.Handle(MethodInitialized, func(method string, params json.RawMessage) error {
		calls = append(calls, "first")
		return nil
	})
	d.Handle(MethodInitialized, func(method string, params json.RawMessage) error {
		calls = append(calls, "second")
		return nil
	})

	if err := d.Dispatch(MethodInitialized, nil); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("got calls %v, want [first second]", calls)
	}
}

func TestDispatcherUnknownMethodIsNoop(t *testing.T) {
	d := NewDispatcher()
	if err := d.Dispatch("notifications/unheard", nil); err != nil {
		t.Errorf("dispatch with no handlers should be a no-op: %v", err)
	}
}

func TestDispatcherStopsAtFirstHandlerError(t *testing.T) {
	d := NewDispatcher()
	sentinel := errors.New("observer broke")
	d.Handle(MethodCancelled, func(method string, params json.RawMessage) error {
		return sentinel
	})
	var laterCalled bool
	d.Handle(MethodCancelled, func(method string, params json.RawMessage) error {
		laterCalled = true
		return nil
	})

	err := d.Dispatch(MethodCancelled, json.RawMessage(`{"requestId":1}`))
	if !errors.Is(err, sentinel) {
		t.Errorf("got %v, want wrapped %v", err, sentinel)
	}
	if laterCalled {
		t.Error("handlers after a failing one must not run")
	}
}

func TestDispatcherPassesParams(t *testing.T) {
	d := NewDispatcher()
	var got string
	d.Handle(MethodCancelled, func(method string, params json.RawMessage) error {
		got = string(params)
		return nil
	})

	want := `{"requestId":42}`
	if err := d.Dispatch(MethodCancelled, json.RawMessage(want)); err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("got params %s, want %s", got, want)
	}
}
