package mcpfs

import (
	"errors"
	"fmt"

	"golang.org/x/time/rate"
)

// ErrRateLimited marks a rejected request or tool call. The dispatcher maps
// it to a -32000 server error rather than an internal error.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimiter bounds how fast a client may drive the server. The loop is
// strictly sequential, so checks are non-blocking: a request over the limit
// is rejected immediately rather than queued.
type RateLimiter struct {
	global  *rate.Limiter
	methods map[string]*rate.Limiter
	tools   map[string]*rate.Limiter
}

// RateLimitConfig defines rate limiting settings.
type RateLimitConfig struct {
	// Global requests per second
	GlobalRPS float64
	// Burst size for global limit
	GlobalBurst int
	// Per-method RPS limits
	MethodRPS map[string]float64
	// Per-method burst limits
	MethodBurst map[string]int
	// Per-tool RPS limits; "*" is the default for unlisted tools
	ToolRPS map[string]float64
	// Per-tool burst limits
	ToolBurst map[string]int
}

// DefaultRateLimitConfig provides sensible defaults.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		GlobalRPS:   100,
		GlobalBurst: 50,
		MethodRPS: map[string]float64{
			"tools/list": 10,
			"tools/call": 5,
		},
		MethodBurst: map[string]int{
			"tools/list": 5,
			"tools/call": 3,
		},
		ToolRPS: map[string]float64{
			"*": 2,
		},
		ToolBurst: map[string]int{
			"*": 1,
		},
	}
}

// NewRateLimiter creates a new rate limiter with the given config.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		global:  rate.NewLimiter(rate.Limit(cfg.GlobalRPS), cfg.GlobalBurst),
		methods: make(map[string]*rate.Limiter),
		tools:   make(map[string]*rate.Limiter),
	}

	for method, rps := range cfg.MethodRPS {
		rl.methods[method] = rate.NewLimiter(rate.Limit(rps), cfg.MethodBurst[method])
	}
	for tool, rps := range cfg.ToolRPS {
		rl.tools[tool] = rate.NewLimiter(rate.Limit(rps), cfg.ToolBurst[tool])
	}

	return rl
}

// Allow checks whether a request for method should be served now.
func (rl *RateLimiter) Allow(method string) error {
	if !rl.global.Allow() {
		return ErrRateLimited
	}
	if limiter, ok := rl.methods[method]; ok && !limiter.Allow() {
		return fmt.Errorf("%w for method %q", ErrRateLimited, method)
	}
	return nil
}

// AllowTool checks whether an invocation of the named tool should be served
// now, falling back to the "*" default limit for unlisted tools.
func (rl *RateLimiter) AllowTool(name string) error {
	limiter, ok := rl.tools[name]
	if !ok {
		limiter = rl.tools["*"]
	}
	if limiter != nil && !limiter.Allow() {
		return fmt.Errorf("%w for tool %q", ErrRateLimited, name)
	}
	return nil
}
