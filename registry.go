package mcpfs

import (
	"context"
	"encoding/json"
	"fmt"
)

// Registry owns the fixed set of invocable tools. Registration happens at
// startup; afterwards the registry is read-only, so no locking is needed in
// the strictly sequential server loop. List order is insertion order and
// stable across calls.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool to the registry.
func (r *Registry) Register(t Tool) error {
	if t.Name == "" {
		return fmt.Errorf("tool name required")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool handler required")
	}
	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("tool %q already registered", t.Name)
	}
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// MustRegister registers each tool and panics on error. Intended for startup
// wiring of a static tool set.
func (r *Registry) MustRegister(tools ...Tool) {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// List returns the descriptors of all registered tools in registration
// order, with handlers stripped.
func (r *Registry) List() []Tool {
	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		t.Handler = nil
		tools = append(tools, t)
	}
	return tools
}

// Invoke dispatches a tool call by name. An unregistered name is a
// tool-level failure carried in an error-flagged result, not a JSON-RPC
// error: the caller asked a well-formed question about a tool that does not
// exist.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (*ToolResult, error) {
	t, ok := r.tools[name]
	if !ok {
		return Failf("Tool '%s' not found", name), nil
	}
	return t.Handler(ctx, args)
}
