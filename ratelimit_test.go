package mcpfs

import (
	"testing"
	"time"
)

func TestRateLimiter(t *testing.T) {
	cfg := RateLimitConfig{
		GlobalRPS:   100,
		GlobalBurst: 100,
		MethodRPS: map[string]float64{
			"tools/call": 1,
		},
		MethodBurst: map[string]int{
			"tools/call": 1,
		},
		ToolRPS: map[string]float64{
			"read_file": 1,
			"*":         1,
		},
		ToolBurst: map[string]int{
			"read_file": 1,
			"*":         1,
		},
	}

	rl := NewRateLimiter(cfg)

	if err := rl.Allow("tools/call"); err != nil {
		t.Errorf("first request should be allowed: %v", err)
	}
	if err := rl.Allow("tools/call"); err == nil {
		t.Error("immediate second request should be rejected")
	}
	if err := rl.Allow("tools/list"); err != nil {
		t.Errorf("unlimited method should be allowed: %v", err)
	}

	if err := rl.AllowTool("read_file"); err != nil {
		t.Errorf("first tool call should be allowed: %v", err)
	}
	if err := rl.AllowTool("read_file"); err == nil {
		t.Error("immediate second tool call should be rejected")
	}

	// Unlisted tools fall back to the "*" limit.
	if err := rl.AllowTool("greeting"); err != nil {
		t.Errorf("first fallback tool call should be allowed: %v", err)
	}
	if err := rl.AllowTool("greeting"); err == nil {
		t.Error("immediate second fallback tool call should be rejected")
	}

	time.Sleep(1100 * time.Millisecond)
	if err := rl.Allow("tools/call"); err != nil {
		t.Errorf("request after refill should be allowed: %v", err)
	}
}

func TestRateLimiterGlobal(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{GlobalRPS: 1, GlobalBurst: 1})
	if err := rl.Allow("ping"); err != nil {
		t.Errorf("first request should be allowed: %v", err)
	}
	if err := rl.Allow("ping"); err == nil {
		t.Error("immediate second request should be rejected")
	}
}
