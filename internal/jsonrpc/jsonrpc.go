// Package jsonrpc holds the JSON-RPC 2.0 wire types and the line-delimited
// codec used by the server loop. One JSON value per line, UTF-8, no embedded
// newlines; every write is flushed immediately.
package jsonrpc

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Version is the JSON-RPC protocol version carried on every message.
const Version = "2.0"

// Error codes used on the wire.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeServerError    = -32000

	// CodeLegacyParse is the code emitted for unparseable input lines.
	// The reference server used 0 instead of -32700 and clients have been
	// observed matching on it, so it is kept as-is.
	CodeLegacyParse = 0
)

// Request represents an inbound JSON-RPC request or notification. A message
// is a notification iff it carries no id.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the message carries no correlation id.
func (r *Request) IsNotification() bool { return len(r.ID) == 0 }

// Response represents an outbound JSON-RPC response. Exactly one of Result
// and Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error represents a JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc: %d %s", e.Code, e.Message)
}

// NewResult builds a success response, marshaling result and echoing id
// verbatim from the originating request.
func NewResult(id json.RawMessage, result any) (*Response, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return &Response{JSONRPC: Version, ID: id, Result: data}, nil
}

// NewError builds an error response for the given id.
func NewError(id json.RawMessage, code int, message string) *Response {
	return &Response{
		JSONRPC: Version,
		ID:      id,
		Error:   &Error{Code: code, Message: message},
	}
}

// NewParseError builds the response emitted when an input line cannot be
// parsed. The id is hardcoded to the string "1": the reference server never
// derived it from the (unparseable) request and the shape is pinned by
// existing clients.
func NewParseError(err error) *Response {
	return &Response{
		JSONRPC: Version,
		ID:      json.RawMessage(`"1"`),
		Error: &Error{
			Code:    CodeLegacyParse,
			Message: fmt.Sprintf("Error parsing stdin: %v", err),
		},
	}
}

// LineReader reads one JSON value per line, skipping blank lines.
type LineReader struct {
	sc *bufio.Scanner
}

// NewLineReader wraps r with a line scanner sized for large single-line
// payloads (file contents travel inside tool results).
func NewLineReader(r io.Reader) *LineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &LineReader{sc: sc}
}

// Next returns the next non-blank line, or io.EOF when the stream ends.
func (lr *LineReader) Next() ([]byte, error) {
	for lr.sc.Scan() {
		line := bytes.TrimSpace(lr.sc.Bytes())
		if len(line) == 0 {
			continue
		}
		return line, nil
	}
	if err := lr.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// LineWriter writes one JSON value per line and flushes after every write.
type LineWriter struct {
	w *bufio.Writer
}

func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: bufio.NewWriter(w)}
}

// Write marshals v, appends a newline and flushes.
func (lw *LineWriter) Write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return lw.WriteRaw(data)
}

// WriteRaw writes one already-encoded line, appends a newline and flushes.
func (lw *LineWriter) WriteRaw(data []byte) error {
	if _, err := lw.w.Write(data); err != nil {
		return err
	}
	if err := lw.w.WriteByte('\n'); err != nil {
		return err
	}
	return lw.w.Flush()
}
