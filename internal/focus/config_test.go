package focus

import (
	"testing"
	"time"
)

func TestConfigNormalize(t *testing.T) {
	c := Config{TypewriterFraction: 0.95, CaretRetries: -1, ScrollPadding: -4}.Normalize()
	d := DefaultConfig()

	if c.CaretRetryDelay != d.CaretRetryDelay || c.TypingIdle != d.TypingIdle {
		t.Fatalf("expected zero durations to take defaults, got %+v", c)
	}
	if c.TypewriterFraction != 0.80 {
		t.Fatalf("expected fraction clamped to 0.80, got %v", c.TypewriterFraction)
	}
	if c.CaretRetries != 0 || c.ScrollPadding != 0 {
		t.Fatalf("expected negatives clamped to 0, got retries=%d padding=%d", c.CaretRetries, c.ScrollPadding)
	}
	if len(c.CaretFollowUps) != 2 {
		t.Fatalf("expected default follow-ups, got %v", c.CaretFollowUps)
	}

	low := Config{TypewriterFraction: 0.1}.Normalize()
	if low.TypewriterFraction != 0.40 {
		t.Fatalf("expected fraction clamped to 0.40, got %v", low.TypewriterFraction)
	}

	// An explicit empty list disables follow-ups.
	none := Config{CaretFollowUps: []time.Duration{}}.Normalize()
	if len(none.CaretFollowUps) != 0 {
		t.Fatalf("expected follow-ups disabled, got %v", none.CaretFollowUps)
	}
}

func TestSetConfigAppliesToNewTasks(t *testing.T) {
	h := newHarness(DefaultConfig(), "alpha")
	cfg := DefaultConfig()
	cfg.TypingIdle = 50 * time.Millisecond
	h.e.SetConfig(cfg)
	h.enterAt("A", 5)

	h.host.typeText(h.e, "A", "alpha!")
	h.loop.advance(60 * time.Millisecond)
	if len(h.lis.finalized) != 1 {
		t.Fatalf("expected the shorter idle window to apply")
	}
	if h.e.Config().TypingIdle != 50*time.Millisecond {
		t.Fatalf("unexpected config: %+v", h.e.Config())
	}
}
