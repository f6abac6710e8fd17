package focus

import "time"

const (
	minTypewriterFraction = 0.40
	maxTypewriterFraction = 0.80
)

// Config holds the tuning knobs of the engine. The time windows interact (for
// example ExclusionWindow against CaretRetryDelay) and are empirically tuned;
// none of them is a behavioral contract.
type Config struct {
	// CaretRetryDelay is the fixed delay between caret application attempts.
	CaretRetryDelay time.Duration
	// CaretRetries bounds the number of retries after the first attempt.
	CaretRetries int
	// CaretFollowUps are the delays (after first success) of the supplementary
	// re-applications that correct late focus handoff by the host.
	CaretFollowUps []time.Duration
	// ExclusionWindow is how long the previous surface is refused as a caret
	// target after a cross-block navigation.
	ExclusionWindow time.Duration

	// TypingIdle closes a typing batch when no edit arrived for this long.
	TypingIdle time.Duration
	// StrongBoundaryChars is the minimum size of a single insert/delete that can
	// count as a strong boundary.
	StrongBoundaryChars int

	// NormalizeInterval rate-limits NormalizeInactiveOffsets.
	NormalizeInterval time.Duration
	// ScrollPadding is the band (rows) kept clear above and below the caret.
	ScrollPadding int
	// TypewriterFraction is where the caret line sits in typewriter mode,
	// measured from the top of the viewport.
	TypewriterFraction float64
	// TypewriterDeadZone is the drift (rows) tolerated before typewriter mode
	// scrolls again.
	TypewriterDeadZone int

	// RepeatThreshold is the inter-key gap under which a navigation key is
	// treated as auto-repeat by hosts that cannot observe repeat directly.
	RepeatThreshold time.Duration
}

func DefaultConfig() Config {
	return Config{
		CaretRetryDelay:     20 * time.Millisecond,
		CaretRetries:        8,
		CaretFollowUps:      []time.Duration{60 * time.Millisecond, 180 * time.Millisecond},
		ExclusionWindow:     120 * time.Millisecond,
		TypingIdle:          300 * time.Millisecond,
		StrongBoundaryChars: 24,
		NormalizeInterval:   150 * time.Millisecond,
		ScrollPadding:       2,
		TypewriterFraction:  0.5,
		TypewriterDeadZone:  2,
		RepeatThreshold:     35 * time.Millisecond,
	}
}

// Normalize fills zero values from DefaultConfig and clamps ranges.
func (c Config) Normalize() Config {
	d := DefaultConfig()
	if c.CaretRetryDelay <= 0 {
		c.CaretRetryDelay = d.CaretRetryDelay
	}
	if c.CaretRetries < 0 {
		c.CaretRetries = 0
	}
	if c.CaretFollowUps == nil {
		c.CaretFollowUps = d.CaretFollowUps
	}
	if c.ExclusionWindow < 0 {
		c.ExclusionWindow = 0
	}
	if c.TypingIdle <= 0 {
		c.TypingIdle = d.TypingIdle
	}
	if c.StrongBoundaryChars <= 0 {
		c.StrongBoundaryChars = d.StrongBoundaryChars
	}
	if c.NormalizeInterval < 0 {
		c.NormalizeInterval = 0
	}
	if c.ScrollPadding < 0 {
		c.ScrollPadding = 0
	}
	if c.TypewriterFraction == 0 {
		c.TypewriterFraction = d.TypewriterFraction
	}
	c.TypewriterFraction = clampFraction(c.TypewriterFraction)
	if c.TypewriterDeadZone < 0 {
		c.TypewriterDeadZone = 0
	}
	if c.RepeatThreshold < 0 {
		c.RepeatThreshold = 0
	}
	return c
}

func clampFraction(f float64) float64 {
	if f < minTypewriterFraction {
		return minTypewriterFraction
	}
	if f > maxTypewriterFraction {
		return maxTypewriterFraction
	}
	return f
}
