package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mcpfs/mcpfs"
	"github.com/mcpfs/mcpfs/internal/mcptest"
)

// buildServer compiles the binary once per test into a temp dir.
func buildServer(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mcpfs")
	cmd := exec.Command("go", "build", "-o", path, ".")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build server: %v\n%s", err, out)
	}
	return path
}

func TestServerEndToEnd(t *testing.T) {
	serverPath := buildServer(t)

	debugLog := &bytes.Buffer{}
	server := mcptest.NewTestServer(t, serverPath, mcptest.WithDebugLog(debugLog))
	defer server.Close()

	ctx := context.Background()
	c := server.Client()

	reply, err := c.Initialize(ctx, mcpfs.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	})
	if err != nil {
		t.Fatalf("Failed to initialize server: %v", err)
	}
	if reply.ProtocolVersion != mcpfs.ProtocolVersion {
		t.Errorf("got protocol version %q, want %q", reply.ProtocolVersion, mcpfs.ProtocolVersion)
	}
	if reply.ServerInfo.Name != "Barebones MCP Server" {
		t.Errorf("got server name %q", reply.ServerInfo.Name)
	}

	tools, err := c.ListTools(ctx)
	if err != nil {
		t.Fatalf("Failed to list tools: %v", err)
	}
	byName := make(map[string]mcpfs.Tool, len(tools))
	for _, tool := range tools {
		byName[tool.Name] = tool
	}
	for _, name := range []string{"greeting", "read_file", "write_file", "create_directory", "list_directory"} {
		if _, ok := byName[name]; !ok {
			t.Errorf("tool %q not advertised", name)
		}
	}
	greeting, ok := byName["greeting"]
	if !ok {
		t.Fatal("greeting tool not found")
	}
	required, _ := greeting.InputSchema["required"].([]any)
	if len(required) != 1 || required[0] != "name" {
		t.Errorf("greeting required args = %v, want [name]", required)
	}

	result, err := c.CallTool(ctx, "greeting", map[string]string{"name": "Ada"})
	if err != nil {
		t.Fatalf("Failed to call greeting: %v", err)
	}
	if result.IsError {
		t.Fatalf("greeting failed: %+v", result)
	}
	if got, want := result.Content[0].Text, "Hello from the MCP Server Ada!"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	// Missing argument is an error-flagged result, not a JSON-RPC error.
	result, err = c.CallTool(ctx, "greeting", map[string]string{})
	if err != nil {
		t.Fatalf("greeting with no args must not be a protocol error: %v", err)
	}
	if !result.IsError {
		t.Error("greeting with no args must set isError")
	}

	if t.Failed() {
		t.Logf("Debug log:\n%s", debugLog.String())
	}
}

func TestFileRoundTripEndToEnd(t *testing.T) {
	serverPath := buildServer(t)
	server := mcptest.NewTestServer(t, serverPath)
	defer server.Close()

	ctx := context.Background()
	c := server.Client()
	if _, err := c.Initialize(ctx, mcpfs.Implementation{Name: "test-client", Version: "1.0.0"}); err != nil {
		t.Fatalf("Failed to initialize server: %v", err)
	}

	path := filepath.Join(t.TempDir(), "roundtrip.txt")
	content := "written by the test\n"

	result, err := c.CallTool(ctx, "write_file", map[string]string{
		"file_path": path,
		"content":   content,
	})
	if err != nil {
		t.Fatalf("Failed to call write_file: %v", err)
	}
	if result.IsError {
		t.Fatalf("write_file failed: %s", result.Content[0].Text)
	}

	result, err = c.CallTool(ctx, "read_file", map[string]string{"file_path": path})
	if err != nil {
		t.Fatalf("Failed to call read_file: %v", err)
	}
	if result.IsError {
		t.Fatalf("read_file failed: %s", result.Content[0].Text)
	}
	if result.Content[0].Text != content {
		t.Errorf("got %q, want %q", result.Content[0].Text, content)
	}
}

func TestParseErrorEndToEnd(t *testing.T) {
	serverPath := buildServer(t)
	server := mcptest.NewTestServer(t, serverPath)
	defer server.Close()

	c := server.Client()

	line, err := c.SendRaw("this is not json")
	if err != nil {
		t.Fatalf("Failed to exchange raw line: %v", err)
	}
	var resp struct {
		ID    json.RawMessage `json:"id"`
		Error *struct {
			Code int `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(line, &resp); err != nil {
		t.Fatalf("invalid parse-error response %s: %v", line, err)
	}
	if resp.Error == nil || resp.Error.Code != 0 {
		t.Errorf("got %s, want error code 0", line)
	}
	if string(resp.ID) != `"1"` {
		t.Errorf("got id %s, want \"1\"", resp.ID)
	}

	// The server must keep serving after the bad line.
	if _, err := c.Call(context.Background(), "ping", nil); err != nil {
		t.Errorf("ping after parse error failed: %v", err)
	}
}

func TestScripts(t *testing.T) {
	serverPath := buildServer(t)
	t.Setenv("MCPFS_BIN", serverPath)

	scripts, err := filepath.Glob("testdata/*.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(scripts) == 0 {
		t.Fatal("no scripts under testdata")
	}

	for _, script := range scripts {
		name := strings.TrimSuffix(filepath.Base(script), ".txt")
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			if err := mcptest.RunScriptFile(context.Background(), script, &out); err != nil {
				t.Fatalf("script failed: %v\n%s", err, out.String())
			}
		})
	}
}
