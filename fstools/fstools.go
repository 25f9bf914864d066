// Package fstools provides the stock filesystem tool set served over
// tools/call: greeting, read_file, write_file, create_directory and
// list_directory. Each tool validates its own required arguments before
// acting and reports recoverable failures as error-flagged results.
package fstools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mcpfs/mcpfs"
)

// decodeArgs parses the raw argument object. An absent or null arguments
// field decodes to an empty map so required-key checks produce the same
// message either way.
func decodeArgs(raw json.RawMessage) (map[string]any, error) {
	args := map[string]any{}
	if len(raw) == 0 {
		return args, nil
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return args, nil
}

// stringArg extracts a required string argument, or a tool-level failure
// naming the missing key.
func stringArg(args map[string]any, key string) (string, *mcpfs.ToolResult) {
	v, ok := args[key]
	if !ok {
		return "", mcpfs.Failf("Missing '%s' argument in tool call", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", mcpfs.Failf("Argument '%s' must be a string", key)
	}
	return s, nil
}

// Greeting returns the greeting tool: echoes a hello message with the
// caller-supplied name.
func Greeting() mcpfs.Tool {
	return mcpfs.Tool{
		Name:        "greeting",
		Title:       "Greeting Tool",
		Description: "Returns a greeting message with the user's name.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{"type": "string", "description": "The name of the user"},
			},
			"required": []string{"name"},
		},
		Handler: func(ctx context.Context, raw json.RawMessage) (*mcpfs.ToolResult, error) {
			args, err := decodeArgs(raw)
			if err != nil {
				return mcpfs.Failf("%v", err), nil
			}
			name, fail := stringArg(args, "name")
			if fail != nil {
				return fail, nil
			}
			return mcpfs.Text(fmt.Sprintf("Hello from the MCP Server %s!", name)), nil
		},
	}
}

// ReadFile returns the read_file tool: reads a file and returns its
// contents as text.
func ReadFile() mcpfs.Tool {
	return mcpfs.Tool{
		Name:        "read_file",
		Title:       "Read File Tool",
		Description: "Reads the contents of a file and returns it as text.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"file_path": map[string]any{"type": "string", "description": "Path to the file to read"},
			},
			"required": []string{"file_path"},
		},
		Handler: func(ctx context.Context, raw json.RawMessage) (*mcpfs.ToolResult, error) {
			args, err := decodeArgs(raw)
			if err != nil {
				return mcpfs.Failf("%v", err), nil
			}
			path, fail := stringArg(args, "file_path")
			if fail != nil {
				return fail, nil
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return mcpfs.Failf("Error reading file '%s': %v", path, err), nil
			}
			return mcpfs.Text(string(content)), nil
		},
	}
}

// WriteFile returns the write_file tool: writes text content to a file,
// creating or truncating it.
func WriteFile() mcpfs.Tool {
	return mcpfs.Tool{
		Name:        "write_file",
		Title:       "Write File Tool",
		Description: "Writes text content to a file, creating it if necessary.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"file_path": map[string]any{"type": "string", "description": "Path to the file to write"},
				"content":   map[string]any{"type": "string", "description": "Content to write to the file"},
			},
			"required": []string{"file_path", "content"},
		},
		Handler: func(ctx context.Context, raw json.RawMessage) (*mcpfs.ToolResult, error) {
			args, err := decodeArgs(raw)
			if err != nil {
				return mcpfs.Failf("%v", err), nil
			}
			path, fail := stringArg(args, "file_path")
			if fail != nil {
				return fail, nil
			}
			content, fail := stringArg(args, "content")
			if fail != nil {
				return fail, nil
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return mcpfs.Failf("Error writing file '%s': %v", path, err), nil
			}
			return mcpfs.Text(fmt.Sprintf("Successfully wrote to '%s'", path)), nil
		},
	}
}

// CreateDirectory returns the create_directory tool. A target that already
// exists as a directory is reported as success; an existing non-directory is
// a failure. With parents (default true) missing ancestors are created.
func CreateDirectory() mcpfs.Tool {
	return mcpfs.Tool{
		Name:        "create_directory",
		Title:       "Create Directory Tool",
		Description: "Creates a directory, optionally creating missing parent directories.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"directory_path": map[string]any{"type": "string", "description": "Path of the directory to create"},
				"parents":        map[string]any{"type": "boolean", "description": "Create missing parent directories", "default": true},
			},
			"required": []string{"directory_path"},
		},
		Handler: func(ctx context.Context, raw json.RawMessage) (*mcpfs.ToolResult, error) {
			args, err := decodeArgs(raw)
			if err != nil {
				return mcpfs.Failf("%v", err), nil
			}
			path, fail := stringArg(args, "directory_path")
			if fail != nil {
				return fail, nil
			}
			parents := true
			if v, ok := args["parents"]; ok {
				b, ok := v.(bool)
				if !ok {
					return mcpfs.Failf("Argument 'parents' must be a boolean"), nil
				}
				parents = b
			}

			if info, err := os.Stat(path); err == nil {
				if info.IsDir() {
					return mcpfs.Text(fmt.Sprintf("Directory '%s' already exists", path)), nil
				}
				return mcpfs.Failf("Path '%s' exists and is not a directory", path), nil
			}

			if parents {
				err = os.MkdirAll(path, 0o755)
			} else {
				err = os.Mkdir(path, 0o755)
			}
			if err != nil {
				return mcpfs.Failf("Error creating directory '%s': %v", path, err), nil
			}
			return mcpfs.Text(fmt.Sprintf("Directory '%s' created successfully", path)), nil
		},
	}
}

// ListDirectory returns the list_directory tool: lists a directory's
// entries, filtered through the denylists below, partitioned into files and
// subdirectories and sorted.
func ListDirectory() mcpfs.Tool {
	return mcpfs.Tool{
		Name:        "list_directory",
		Title:       "List Directory Tool",
		Description: "Lists files and subdirectories of a directory, skipping caches, build output and editor metadata.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"directory_path": map[string]any{"type": "string", "description": "Path of the directory to list"},
			},
			"required": []string{"directory_path"},
		},
		Handler: func(ctx context.Context, raw json.RawMessage) (*mcpfs.ToolResult, error) {
			args, err := decodeArgs(raw)
			if err != nil {
				return mcpfs.Failf("%v", err), nil
			}
			path, fail := stringArg(args, "directory_path")
			if fail != nil {
				return fail, nil
			}

			listing, failure := listDirectory(path)
			if failure != nil {
				return failure, nil
			}
			return mcpfs.Text(listing.render()), nil
		},
	}
}
