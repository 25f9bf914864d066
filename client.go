package mcpfs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/mcpfs/mcpfs/internal/jsonrpc"
)

// Client speaks the line-delimited protocol from the client side. The server
// answers strictly in order, so each call writes one line and reads one
// line. Used by the test harness and by embedders driving a server over a
// pipe or subprocess stdio.
type Client struct {
	mu     sync.Mutex
	out    *jsonrpc.LineWriter
	in     *jsonrpc.LineReader
	nextID int
}

// NewClient creates a client over rw (server's stdin as the write side,
// stdout as the read side).
func NewClient(rw io.ReadWriter) *Client {
	return &Client{
		out:    jsonrpc.NewLineWriter(rw),
		in:     jsonrpc.NewLineReader(rw),
		nextID: 1,
	}
}

// Call sends a request and waits for its response, returning the raw result
// or the server's error.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++

	var rawParams json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal params: %w", err)
		}
		rawParams = data
	}

	req := jsonrpc.Request{
		JSONRPC: jsonrpc.Version,
		ID:      json.RawMessage(strconv.Itoa(id)),
		Method:  method,
		Params:  rawParams,
	}
	if err := c.out.Write(req); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	line, err := c.in.Next()
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp jsonrpc.Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}

// SendRaw writes one line verbatim and returns the next response line.
// Exposed so tests can exercise the server's parse-error path through the
// same buffered reader the client owns.
func (c *Client) SendRaw(line string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.out.WriteRaw([]byte(line)); err != nil {
		return nil, fmt.Errorf("write line: %w", err)
	}
	resp, err := c.in.Next()
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return append([]byte(nil), resp...), nil
}

// Notify sends a one-way message. No response is read.
func (c *Client) Notify(ctx context.Context, method string, params any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var rawParams json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshal params: %w", err)
		}
		rawParams = data
	}

	return c.out.Write(jsonrpc.Request{
		JSONRPC: jsonrpc.Version,
		Method:  method,
		Params:  rawParams,
	})
}

// Initialize performs the handshake: initialize request followed by the
// initialized notification.
func (c *Client) Initialize(ctx context.Context, clientInfo Implementation) (*InitializeResult, error) {
	result, err := c.Call(ctx, "initialize", InitializeParams{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    json.RawMessage(`{}`),
		ClientInfo:      &clientInfo,
	})
	if err != nil {
		return nil, err
	}

	var reply InitializeResult
	if err := json.Unmarshal(result, &reply); err != nil {
		return nil, fmt.Errorf("decode initialize result: %w", err)
	}

	if err := c.Notify(ctx, MethodInitialized, nil); err != nil {
		return nil, err
	}
	return &reply, nil
}

// ListTools requests the advertised tool descriptors.
func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	result, err := c.Call(ctx, "tools/list", nil)
	if err != nil {
		return nil, err
	}
	var reply ListToolsResult
	if err := json.Unmarshal(result, &reply); err != nil {
		return nil, fmt.Errorf("decode tools/list result: %w", err)
	}
	return reply.Tools, nil
}

// CallTool invokes a tool by name.
func (c *Client) CallTool(ctx context.Context, name string, args any) (*ToolResult, error) {
	var rawArgs json.RawMessage
	if args != nil {
		data, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("marshal args: %w", err)
		}
		rawArgs = data
	}

	result, err := c.Call(ctx, "tools/call", CallToolParams{Name: name, Arguments: rawArgs})
	if err != nil {
		return nil, err
	}
	var reply ToolResult
	if err := json.Unmarshal(result, &reply); err != nil {
		return nil, fmt.Errorf("decode tools/call result: %w", err)
	}
	return &reply, nil
}
