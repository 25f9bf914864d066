package mcpfs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func noopHandler(ctx context.Context, args json.RawMessage) (*ToolResult, error) {
	return Text("ok"), nil
}

func TestRegistryListOrderStable(t *testing.T) {
	r := NewRegistry()
	names := []string{"zeta", "alpha", "mid"}
	for _, name := range names {
		if err := r.Register(Tool{Name: name, InputSchema: map[string]any{"type": "object"}, Handler: noopHandler}); err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 3; i++ {
		var got []string
		for _, tool := range r.List() {
			got = append(got, tool.Name)
		}
		if diff := cmp.Diff(names, got); diff != "" {
			t.Fatalf("list order changed on call %d (-want +got):\n%s", i, diff)
		}
	}
}

func TestRegistryListStripsHandlers(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Tool{Name: "t", InputSchema: map[string]any{"type": "object"}, Handler: noopHandler}); err != nil {
		t.Fatal(err)
	}
	for _, tool := range r.List() {
		if tool.Handler != nil {
			t.Errorf("tool %q leaked its handler", tool.Name)
		}
	}
}

func TestRegistryRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		tool Tool
	}{
		{"empty name", Tool{Handler: noopHandler}},
		{"nil handler", Tool{Name: "t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			if err := r.Register(tt.tool); err == nil {
				t.Error("expected registration error")
			}
		})
	}
}

func TestRegistryDuplicateName(t *testing.T) {
	r := NewRegistry()
	tool := Tool{Name: "dup", InputSchema: map[string]any{"type": "object"}, Handler: noopHandler}
	if err := r.Register(tool); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(tool); err == nil {
		t.Error("expected duplicate registration error")
	}
}

func TestRegistryInvokeUnknown(t *testing.T) {
	r := NewRegistry()
	result, err := r.Invoke(context.Background(), "ghost", nil)
	if err != nil {
		t.Fatalf("unknown tool must not be a protocol error: %v", err)
	}
	if !result.IsError {
		t.Error("unknown tool must be an error-flagged result")
	}
	if got, want := result.Content[0].Text, "Tool 'ghost' not found"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
