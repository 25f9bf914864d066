package mcptest

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"testing"

	"github.com/mcpfs/mcpfs"
)

// TestServer runs a server binary as a subprocess and exposes an mcpfs
// client over its stdio.
type TestServer struct {
	t        *testing.T
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stdout   io.ReadCloser
	stderr   io.ReadCloser
	client   *mcpfs.Client
	debugLog io.Writer
	done     chan struct{}
}

type ServerOption func(*TestServer)

// WithDebugLog mirrors the server's stderr into w.
func WithDebugLog(w io.Writer) ServerOption {
	return func(s *TestServer) {
		s.debugLog = w
	}
}

// WithArgs appends extra command-line arguments.
func WithArgs(args ...string) ServerOption {
	return func(s *TestServer) {
		s.cmd.Args = append(s.cmd.Args, args...)
	}
}

// NewTestServer starts serverPath and wires a client to it. The process is
// killed on Close; callers should defer it.
func NewTestServer(t *testing.T, serverPath string, opts ...ServerOption) *TestServer {
	t.Helper()

	s := &TestServer{
		t:        t,
		debugLog: io.Discard,
		done:     make(chan struct{}),
	}
	s.cmd = exec.Command(serverPath)

	for _, opt := range opts {
		opt(s)
	}

	var err error
	s.stdin, err = s.cmd.StdinPipe()
	if err != nil {
		t.Fatalf("Failed to create stdin pipe: %v", err)
	}
	s.stdout, err = s.cmd.StdoutPipe()
	if err != nil {
		t.Fatalf("Failed to create stdout pipe: %v", err)
	}
	s.stderr, err = s.cmd.StderrPipe()
	if err != nil {
		t.Fatalf("Failed to create stderr pipe: %v", err)
	}

	if err := s.cmd.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	go s.logStderr()
	go func() {
		err := s.cmd.Wait()
		fmt.Fprintf(s.debugLog, "server process exited: %v\n", err)
		close(s.done)
	}()

	s.client = mcpfs.NewClient(rwc{s.stdin, s.stdout})
	return s
}

// Client returns the protocol client connected to the subprocess.
func (s *TestServer) Client() *mcpfs.Client {
	return s.client
}

// Close kills the subprocess and waits for it to exit.
func (s *TestServer) Close() error {
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
		<-s.done
	}
	return nil
}

func (s *TestServer) logStderr() {
	scanner := bufio.NewScanner(s.stderr)
	for scanner.Scan() {
		fmt.Fprintf(s.debugLog, "ERR: %s\n", scanner.Text())
	}
}

type rwc struct {
	io.WriteCloser
	io.Reader
}

func (r rwc) Close() error {
	if err := r.WriteCloser.Close(); err != nil {
		return err
	}
	if rc, ok := r.Reader.(io.Closer); ok {
		return rc.Close()
	}
	return nil
}
