package mcpfs

import "log/slog"

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger. Logs go to the logger's own sink
// (stderr in the shipped binary); stdout is reserved for the wire.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithCapabilities overrides the advertised capability set.
func WithCapabilities(caps Capabilities) Option {
	return func(s *Server) {
		s.caps = caps
	}
}

// WithRateLimiting enables request and tool-call rate limiting. Off by
// default.
func WithRateLimiting(cfg RateLimitConfig) Option {
	return func(s *Server) {
		s.limiter = NewRateLimiter(cfg)
	}
}

// WithRegistry replaces the server's tool registry.
func WithRegistry(r *Registry) Option {
	return func(s *Server) {
		s.registry = r
	}
}
