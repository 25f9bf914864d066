// Command mcpfs serves the filesystem tool set over line-delimited JSON-RPC
// on stdin/stdout. All logging goes to stderr; stdout carries only protocol
// messages.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mcpfs/mcpfs"
	"github.com/mcpfs/mcpfs/fstools"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mcpfs",
		Short: "MCP filesystem server over stdio",
		RunE:  runServer,
	}

	flags := rootCmd.Flags()
	flags.String("name", "Barebones MCP Server", "server name advertised at initialize")
	flags.String("server-version", "1.12.2", "server version advertised at initialize")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Bool("rate-limit", false, "enable request rate limiting")

	viper.SetEnvPrefix("MCPFS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(flags); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	log := newLogger(viper.GetString("log-level"))

	opts := []mcpfs.Option{mcpfs.WithLogger(log)}
	if viper.GetBool("rate-limit") {
		opts = append(opts, mcpfs.WithRateLimiting(mcpfs.DefaultRateLimitConfig()))
	}

	srv := mcpfs.NewServer(viper.GetString("name"), viper.GetString("server-version"), opts...)

	for _, t := range []mcpfs.Tool{
		fstools.Greeting(),
		fstools.ReadFile(),
		fstools.WriteFile(),
		fstools.CreateDirectory(),
		fstools.ListDirectory(),
	} {
		if err := srv.RegisterTool(t); err != nil {
			return fmt.Errorf("register tool: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting MCP server")
	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	log.Info("server shutting down")
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
