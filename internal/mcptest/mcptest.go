// Package mcptest drives an mcpfs server binary from tests: a subprocess
// harness for Go tests and a txtar/script runner for wire-level scripts.
package mcptest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/tools/txtar"
	"rsc.io/script"
)

// scriptState tracks the server subprocess shared by script commands.
type scriptState struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	nextID int
}

// send writes one raw line to the server and reads one response line.
func (st *scriptState) send(line []byte) (string, error) {
	if st.cmd == nil {
		return "", fmt.Errorf("no MCP server running, use mcp-start first")
	}
	if _, err := fmt.Fprintf(st.stdin, "%s\n", line); err != nil {
		return "", fmt.Errorf("write request: %w", err)
	}
	resp, err := st.stdout.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return strings.TrimRight(resp, "\n"), nil
}

// sendNotify writes one raw line without reading a reply.
func (st *scriptState) sendNotify(line []byte) error {
	if st.cmd == nil {
		return fmt.Errorf("no MCP server running, use mcp-start first")
	}
	_, err := fmt.Fprintf(st.stdin, "%s\n", line)
	return err
}

func (st *scriptState) stop() {
	if st.cmd == nil {
		return
	}
	st.stdin.Close()
	st.cmd.Process.Kill()
	st.cmd.Wait()
	st.cmd = nil
}

// RunScriptFile executes a txtar-archived wire script against a server
// binary: the archive comment is the script, archive files are extracted
// into the work directory. The script commands are mcp-start, mcp,
// mcp-notify and mcp-raw; responses land on stdout for matching with the
// script's stdout checks.
func RunScriptFile(ctx context.Context, filename string, output io.Writer) error {
	a, err := txtar.ParseFile(filename)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}

	eng := script.NewEngine()
	var state scriptState
	defer state.stop()

	for name, cmd := range scriptCommands(&state) {
		eng.Cmds[name] = cmd
	}
	for name, cmd := range script.DefaultCmds() {
		eng.Cmds[name] = cmd
	}

	workdir, err := os.MkdirTemp("", "mcptest")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workdir)

	s, err := script.NewState(ctx, workdir, os.Environ())
	if err != nil {
		return err
	}
	if err := s.ExtractFiles(a); err != nil {
		return err
	}
	if err := s.Setenv("WORK", s.Getwd()); err != nil {
		return err
	}

	return eng.Execute(s, filename, bufio.NewReader(bytes.NewReader(a.Comment)), output)
}

func scriptCommands(state *scriptState) map[string]script.Cmd {
	return map[string]script.Cmd{
		"mcp-start": script.Command(script.CmdUsage{
			Summary: "start an MCP server subprocess",
			Args:    "command [args...]",
		}, func(s *script.State, args ...string) (script.WaitFunc, error) {
			return startServer(s, state, args...)
		}),
		"mcp": script.Command(script.CmdUsage{
			Summary: "send a request and print the response line",
			Args:    "method [params]",
		}, func(s *script.State, args ...string) (script.WaitFunc, error) {
			if len(args) < 1 {
				return nil, script.ErrUsage
			}
			state.nextID++
			req := map[string]any{
				"jsonrpc": "2.0",
				"id":      state.nextID,
				"method":  args[0],
			}
			if len(args) > 1 {
				req["params"] = json.RawMessage(args[1])
			}
			line, err := json.Marshal(req)
			if err != nil {
				return nil, err
			}
			resp, err := state.send(line)
			if err != nil {
				return nil, err
			}
			return func(*script.State) (string, string, error) {
				return resp + "\n", "", nil
			}, nil
		}),
		"mcp-notify": script.Command(script.CmdUsage{
			Summary: "send a notification; no response is read",
			Args:    "method [params]",
		}, func(s *script.State, args ...string) (script.WaitFunc, error) {
			if len(args) < 1 {
				return nil, script.ErrUsage
			}
			req := map[string]any{
				"jsonrpc": "2.0",
				"method":  args[0],
			}
			if len(args) > 1 {
				req["params"] = json.RawMessage(args[1])
			}
			line, err := json.Marshal(req)
			if err != nil {
				return nil, err
			}
			return nil, state.sendNotify(line)
		}),
		"mcp-raw": script.Command(script.CmdUsage{
			Summary: "send a raw line verbatim and print the response line",
			Args:    "text",
		}, func(s *script.State, args ...string) (script.WaitFunc, error) {
			if len(args) != 1 {
				return nil, script.ErrUsage
			}
			resp, err := state.send([]byte(args[0]))
			if err != nil {
				return nil, err
			}
			return func(*script.State) (string, string, error) {
				return resp + "\n", "", nil
			}, nil
		}),
	}
}

func startServer(s *script.State, state *scriptState, args ...string) (script.WaitFunc, error) {
	if len(args) < 1 {
		return nil, script.ErrUsage
	}
	state.stop()

	bin := args[0]
	if !filepath.IsAbs(bin) && strings.Contains(bin, string(filepath.Separator)) {
		bin = filepath.Join(s.Getwd(), bin)
	}
	cmd := exec.CommandContext(s.Context(), bin, args[1:]...)
	cmd.Dir = s.Getwd()
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting server: %w", err)
	}

	state.cmd = cmd
	state.stdin = stdin
	state.stdout = bufio.NewReader(stdout)
	state.nextID = 0
	return nil, nil
}
