/*
Package mcpfs implements a minimal MCP (Model Context Protocol) server over
a line-delimited JSON-RPC stream, exposing filesystem-oriented tools to a
remote caller.

The server processes one request at a time: a line is read from the input
stream, parsed, dispatched by method name and answered with at most one line
on the output stream. Supported methods are initialize, ping, tools/list and
tools/call; notifications/initialized is observed but never answered.

Failures come in two tiers that are never conflated. Protocol-level errors
(unknown method, malformed JSON, internal panics) become JSON-RPC error
objects and the stream stays open. Tool-level failures (missing arguments,
filesystem errors) ride inside a successful response with isError set;
callers must inspect that flag, not the envelope.

Example server:

	srv := mcpfs.NewServer("filesystem", "1.0.0")
	srv.RegisterTool(fstools.Greeting())
	srv.RegisterTool(fstools.ReadFile())
	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}

Example client (over a pipe or subprocess stdio):

	c := mcpfs.NewClient(conn)
	reply, err := c.Initialize(ctx, mcpfs.Implementation{
		Name:    "example-client",
		Version: "1.0.0",
	})

The fstools package provides the stock tool set: greeting, read_file,
write_file, create_directory and list_directory.
*/
package mcpfs
