package mcpfs

import (
	"context"
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the MCP protocol revision this server speaks.
const ProtocolVersion = "2024-11-05"

// Protocol types
type (
	InitializeParams struct {
		ProtocolVersion string          `json:"protocolVersion"`
		Capabilities    json.RawMessage `json:"capabilities,omitempty"`
		ClientInfo      *Implementation `json:"clientInfo,omitempty"`
	}

	InitializeResult struct {
		ProtocolVersion string         `json:"protocolVersion"`
		Capabilities    Capabilities   `json:"capabilities"`
		ServerInfo      Implementation `json:"serverInfo"`
	}

	ListToolsResult struct {
		Tools []Tool `json:"tools"`
	}

	CallToolParams struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments,omitempty"`
	}

	// Tool describes an invocable capability. The descriptor fields are
	// static and shared read-only; Handler carries the invocation
	// function and never appears on the wire.
	Tool struct {
		Name        string         `json:"name"`
		Title       string         `json:"title,omitempty"`
		Description string         `json:"description,omitempty"`
		InputSchema map[string]any `json:"inputSchema"`
		Handler     Handler        `json:"-"`
	}

	// ToolResult is the tools/call result envelope. IsError marks a
	// recoverable tool-level failure; it rides inside a successful
	// JSON-RPC response, never as a JSON-RPC error.
	ToolResult struct {
		Content []Content `json:"content"`
		IsError bool      `json:"isError,omitempty"`
	}

	Content struct {
		Type string `json:"type"`
		Text string `json:"text,omitempty"`
	}

	Implementation struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
)

// Handler executes a tool invocation. A non-nil error is a protocol-level
// failure (surfaced as a JSON-RPC internal error); tool-level failures are
// returned as an error-flagged ToolResult with a nil error.
type Handler func(ctx context.Context, args json.RawMessage) (*ToolResult, error)

// Capabilities is the capability set advertised at initialize time. All five
// keys are always serialized, including false flags, so a feature-detecting
// client can rely on their presence.
type Capabilities struct {
	Experimental map[string]any      `json:"experimental"`
	Logging      struct{}            `json:"logging"`
	Prompts      PromptsCapability   `json:"prompts"`
	Resources    ResourcesCapability `json:"resources"`
	Tools        ToolsCapability     `json:"tools"`
}

type PromptsCapability struct {
	ListChanged bool `json:"listChanged"`
}

type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe"`
	ListChanged bool `json:"listChanged"`
}

type ToolsCapability struct {
	ListChanged bool `json:"listChanged"`
}

// DefaultCapabilities returns the static capability set: experimental empty,
// logging enabled, all change notifications and subscriptions off.
func DefaultCapabilities() Capabilities {
	return Capabilities{
		Experimental: map[string]any{},
	}
}

// Text builds a successful tool result carrying a single text payload.
func Text(text string) *ToolResult {
	return &ToolResult{
		Content: []Content{{Type: "text", Text: text}},
	}
}

// Failf builds an error-flagged tool result for a recoverable tool-level
// failure (missing argument, filesystem error, path type mismatch).
func Failf(format string, args ...any) *ToolResult {
	return &ToolResult{
		Content: []Content{{Type: "text", Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
