package mcpfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcpfs/mcpfs/internal/jsonrpc"
)

// Server is the protocol state machine: it parses one inbound message at a
// time, routes by method name and produces zero or one outbound message.
// Every request gets exactly one response with the request's id echoed
// verbatim; notifications get none.
type Server struct {
	name     string
	version  string
	caps     Capabilities
	registry *Registry
	dispatch *Dispatcher
	limiter  *RateLimiter
	log      *slog.Logger
}

// NewServer creates a server advertising the given identity.
func NewServer(name, version string, opts ...Option) *Server {
	s := &Server{
		name:     name,
		version:  version,
		caps:     DefaultCapabilities(),
		registry: NewRegistry(),
		dispatch: NewDispatcher(),
		log:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.dispatch.Handle(MethodInitialized, func(method string, params json.RawMessage) error {
		s.log.Info("server fully initialized and ready")
		return nil
	})

	return s
}

// RegisterTool adds a tool to the server's registry.
func (s *Server) RegisterTool(t Tool) error {
	return s.registry.Register(t)
}

// HandleNotification registers an observer for an inbound notification
// method. Observers run after the server's own handling; their errors are
// logged, never sent to the client.
func (s *Server) HandleNotification(method string, fn NotificationFunc) {
	s.dispatch.Handle(method, fn)
}

// Serve runs the sequential read-dispatch-reply loop until the input stream
// ends or ctx is cancelled. Each line is fully handled before the next is
// read; responses are written as single lines and flushed immediately.
// Malformed lines produce a parse-error response and processing continues.
// A clean shutdown emits no final message.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	sess := NewSession()
	in := jsonrpc.NewLineReader(r)
	out := jsonrpc.NewLineWriter(w)

	s.log.Info("serving", "session", sess.ID)

	// Reading happens on its own goroutine only so an interrupt can unblock
	// the loop; each line is still fully handled before the next is taken.
	type readResult struct {
		line []byte
		err  error
	}
	lines := make(chan readResult)
	go func() {
		for {
			line, err := in.Next()
			if err != nil {
				select {
				case lines <- readResult{err: err}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case lines <- readResult{line: append([]byte(nil), line...)}:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		var line []byte
		select {
		case <-ctx.Done():
			return nil
		case rr := <-lines:
			if rr.err == io.EOF {
				return nil
			}
			if rr.err != nil {
				return fmt.Errorf("read request: %w", rr.err)
			}
			line = rr.line
		}

		var req jsonrpc.Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Error("parse error", "session", sess.ID, "err", err)
			if werr := out.Write(jsonrpc.NewParseError(err)); werr != nil {
				return fmt.Errorf("write response: %w", werr)
			}
			continue
		}

		resp := s.handleRequest(ctx, sess, &req)
		if resp == nil {
			continue
		}
		if err := out.Write(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
}

// handleRequest routes one parsed message. It returns nil for notifications
// and exactly one response for everything else. Panics in handlers are
// caught here and become internal-error responses so a single bad request
// cannot take the stream down.
func (s *Server) handleRequest(ctx context.Context, sess *Session, req *jsonrpc.Request) (resp *jsonrpc.Response) {
	defer func() {
		if v := recover(); v != nil {
			s.log.Error("panic handling request", "session", sess.ID, "method", req.Method, "panic", v)
			if req.IsNotification() {
				resp = nil
				return
			}
			resp = jsonrpc.NewError(req.ID, jsonrpc.CodeInternalError, fmt.Sprintf("Internal error: %v", v))
		}
	}()

	if s.limiter != nil && !req.IsNotification() {
		if err := s.limiter.Allow(req.Method); err != nil {
			return jsonrpc.NewError(req.ID, jsonrpc.CodeServerError, err.Error())
		}
	}

	var (
		result any
		err    error
	)

	switch req.Method {
	case "initialize":
		result, err = s.handleInitialize(sess, req.Params)

	case "ping":
		result = struct{}{}

	case "tools/list":
		result = ListToolsResult{Tools: s.registry.List()}

	case "tools/call":
		result, err = s.handleCallTool(ctx, sess, req.Params)

	default:
		if req.IsNotification() {
			if derr := s.dispatch.Dispatch(req.Method, req.Params); derr != nil {
				s.log.Error("notification handler failed", "session", sess.ID, "method", req.Method, "err", derr)
			}
			return nil
		}
		return jsonrpc.NewError(req.ID, jsonrpc.CodeMethodNotFound, fmt.Sprintf("Method '%s' not implemented", req.Method))
	}

	if err != nil {
		s.log.Error("request failed", "session", sess.ID, "method", req.Method, "err", err)
		if req.IsNotification() {
			return nil
		}
		if errors.Is(err, ErrRateLimited) {
			return jsonrpc.NewError(req.ID, jsonrpc.CodeServerError, err.Error())
		}
		return jsonrpc.NewError(req.ID, jsonrpc.CodeInternalError, fmt.Sprintf("Internal error: %v", err))
	}

	if req.IsNotification() {
		return nil
	}

	resp, err = jsonrpc.NewResult(req.ID, result)
	if err != nil {
		return jsonrpc.NewError(req.ID, jsonrpc.CodeInternalError, fmt.Sprintf("Internal error: %v", err))
	}
	return resp
}

// handleInitialize records the client identity, marks the session
// initialized and replies with the server's identity and static capability
// set.
func (s *Server) handleInitialize(sess *Session, params json.RawMessage) (*InitializeResult, error) {
	var p InitializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("invalid initialize params: %w", err)
		}
	}

	sess.ClientInfo = p.ClientInfo
	sess.Initialized = true

	if p.ClientInfo != nil {
		s.log.Info("client initialized", "session", sess.ID, "client", p.ClientInfo.Name, "version", p.ClientInfo.Version)
	}

	return &InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    s.caps,
		ServerInfo:      Implementation{Name: s.name, Version: s.version},
	}, nil
}

// handleCallTool looks up the named tool and translates its two-outcome
// result into the success/error-flagged envelope.
func (s *Server) handleCallTool(ctx context.Context, sess *Session, params json.RawMessage) (*ToolResult, error) {
	var p CallToolParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("invalid tools/call params: %w", err)
		}
	}

	if s.limiter != nil {
		if err := s.limiter.AllowTool(p.Name); err != nil {
			return nil, err
		}
	}

	result, err := s.registry.Invoke(ctx, p.Name, p.Arguments)
	if err != nil {
		return nil, err
	}
	if result.IsError {
		text := ""
		if len(result.Content) > 0 {
			text = result.Content[0].Text
		}
		s.log.Error("tool call failed", "session", sess.ID, "tool", p.Name, "err", text)
	}
	return result, nil
}
