package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"cardwrite/internal/focus"
)

const envConfigDir = "CARDWRITE_CONFIG_DIR"

type GlobalConfig struct {
	// Focus overrides the focus engine timings. Unset fields keep defaults.
	Focus *FocusConfig `json:"focus,omitempty"`
	// TUI holds optional user preferences for the interactive TUI.
	TUI *TUIConfig `json:"tui,omitempty"`
}

type FocusConfig struct {
	CaretRetryDelayMs   *int     `json:"caretRetryDelayMs,omitempty"`
	CaretRetries        *int     `json:"caretRetries,omitempty"`
	CaretFollowUpsMs    []int    `json:"caretFollowUpsMs,omitempty"`
	ExclusionWindowMs   *int     `json:"exclusionWindowMs,omitempty"`
	TypingIdleMs        *int     `json:"typingIdleMs,omitempty"`
	StrongBoundaryChars *int     `json:"strongBoundaryChars,omitempty"`
	NormalizeIntervalMs *int     `json:"normalizeIntervalMs,omitempty"`
	ScrollPadding       *int     `json:"scrollPadding,omitempty"`
	TypewriterFraction  *float64 `json:"typewriterFraction,omitempty"`
	TypewriterDeadZone  *int     `json:"typewriterDeadZone,omitempty"`
	RepeatThresholdMs   *int     `json:"repeatThresholdMs,omitempty"`
}

type TUIConfig struct {
	// Typewriter starts focus mode with typewriter scrolling on.
	Typewriter bool `json:"typewriter,omitempty"`
	// Previews renders inactive cards as markdown. Defaults to on.
	Previews *bool `json:"previews,omitempty"`
	// GlamourStyle is a glamour standard style name ("dark", "light", "notty", ...).
	GlamourStyle string `json:"glamourStyle,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.cardwrite).
	if v := strings.TrimSpace(os.Getenv(envConfigDir)); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, dirName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = &GlobalConfig{}
	}
	return writeJSONFile(path, cfg, 0o600)
}

// ConfigModTime returns the config file's modification time, or the zero time
// when it does not exist.
func ConfigModTime() (time.Time, error) {
	path, err := ConfigPath()
	if err != nil {
		return time.Time{}, err
	}
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return st.ModTime(), nil
}

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

// EngineConfig returns the focus engine configuration with the user's
// overrides applied.
func (c *GlobalConfig) EngineConfig() focus.Config {
	out := focus.DefaultConfig()
	if c == nil || c.Focus == nil {
		return out
	}
	f := c.Focus
	if f.CaretRetryDelayMs != nil {
		out.CaretRetryDelay = ms(*f.CaretRetryDelayMs)
	}
	if f.CaretRetries != nil {
		out.CaretRetries = *f.CaretRetries
	}
	if f.CaretFollowUpsMs != nil {
		out.CaretFollowUps = make([]time.Duration, 0, len(f.CaretFollowUpsMs))
		for _, v := range f.CaretFollowUpsMs {
			out.CaretFollowUps = append(out.CaretFollowUps, ms(v))
		}
	}
	if f.ExclusionWindowMs != nil {
		out.ExclusionWindow = ms(*f.ExclusionWindowMs)
	}
	if f.TypingIdleMs != nil {
		out.TypingIdle = ms(*f.TypingIdleMs)
	}
	if f.StrongBoundaryChars != nil {
		out.StrongBoundaryChars = *f.StrongBoundaryChars
	}
	if f.NormalizeIntervalMs != nil {
		out.NormalizeInterval = ms(*f.NormalizeIntervalMs)
	}
	if f.ScrollPadding != nil {
		out.ScrollPadding = *f.ScrollPadding
	}
	if f.TypewriterFraction != nil {
		out.TypewriterFraction = *f.TypewriterFraction
	}
	if f.TypewriterDeadZone != nil {
		out.TypewriterDeadZone = *f.TypewriterDeadZone
	}
	if f.RepeatThresholdMs != nil {
		out.RepeatThreshold = ms(*f.RepeatThresholdMs)
	}
	return out.Normalize()
}

func (c *GlobalConfig) PreviewsEnabled() bool {
	if c == nil || c.TUI == nil || c.TUI.Previews == nil {
		return true
	}
	return *c.TUI.Previews
}

type configKey struct {
	set func(c *GlobalConfig, v string) error
	get func(c *GlobalConfig) any
}

func intField(field func(f *FocusConfig) **int) configKey {
	return configKey{
		set: func(c *GlobalConfig, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil || n < 0 {
				return fmt.Errorf("expected a non-negative integer, got %q", v)
			}
			if c.Focus == nil {
				c.Focus = &FocusConfig{}
			}
			*field(c.Focus) = &n
			return nil
		},
		get: func(c *GlobalConfig) any {
			if c.Focus == nil || *field(c.Focus) == nil {
				return nil
			}
			return **field(c.Focus)
		},
	}
}

var configKeys = map[string]configKey{
	"focus.caretRetryDelayMs":   intField(func(f *FocusConfig) **int { return &f.CaretRetryDelayMs }),
	"focus.caretRetries":        intField(func(f *FocusConfig) **int { return &f.CaretRetries }),
	"focus.exclusionWindowMs":   intField(func(f *FocusConfig) **int { return &f.ExclusionWindowMs }),
	"focus.typingIdleMs":        intField(func(f *FocusConfig) **int { return &f.TypingIdleMs }),
	"focus.strongBoundaryChars": intField(func(f *FocusConfig) **int { return &f.StrongBoundaryChars }),
	"focus.normalizeIntervalMs": intField(func(f *FocusConfig) **int { return &f.NormalizeIntervalMs }),
	"focus.scrollPadding":       intField(func(f *FocusConfig) **int { return &f.ScrollPadding }),
	"focus.typewriterDeadZone":  intField(func(f *FocusConfig) **int { return &f.TypewriterDeadZone }),
	"focus.repeatThresholdMs":   intField(func(f *FocusConfig) **int { return &f.RepeatThresholdMs }),
	"focus.caretFollowUpsMs": {
		set: func(c *GlobalConfig, v string) error {
			var out []int
			for _, part := range strings.Split(v, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				n, err := strconv.Atoi(part)
				if err != nil || n < 0 {
					return fmt.Errorf("expected comma-separated milliseconds, got %q", v)
				}
				out = append(out, n)
			}
			if out == nil {
				out = []int{}
			}
			if c.Focus == nil {
				c.Focus = &FocusConfig{}
			}
			c.Focus.CaretFollowUpsMs = out
			return nil
		},
		get: func(c *GlobalConfig) any {
			if c.Focus == nil {
				return nil
			}
			return c.Focus.CaretFollowUpsMs
		},
	},
	"focus.typewriterFraction": {
		set: func(c *GlobalConfig, v string) error {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("expected a fraction, got %q", v)
			}
			if c.Focus == nil {
				c.Focus = &FocusConfig{}
			}
			c.Focus.TypewriterFraction = &f
			return nil
		},
		get: func(c *GlobalConfig) any {
			if c.Focus == nil || c.Focus.TypewriterFraction == nil {
				return nil
			}
			return *c.Focus.TypewriterFraction
		},
	},
	"tui.typewriter": {
		set: func(c *GlobalConfig, v string) error {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("expected true/false, got %q", v)
			}
			if c.TUI == nil {
				c.TUI = &TUIConfig{}
			}
			c.TUI.Typewriter = b
			return nil
		},
		get: func(c *GlobalConfig) any { return c.TUI != nil && c.TUI.Typewriter },
	},
	"tui.previews": {
		set: func(c *GlobalConfig, v string) error {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("expected true/false, got %q", v)
			}
			if c.TUI == nil {
				c.TUI = &TUIConfig{}
			}
			c.TUI.Previews = &b
			return nil
		},
		get: func(c *GlobalConfig) any { return c.PreviewsEnabled() },
	},
	"tui.glamourStyle": {
		set: func(c *GlobalConfig, v string) error {
			if c.TUI == nil {
				c.TUI = &TUIConfig{}
			}
			c.TUI.GlamourStyle = strings.TrimSpace(v)
			return nil
		},
		get: func(c *GlobalConfig) any {
			if c.TUI == nil {
				return ""
			}
			return c.TUI.GlamourStyle
		},
	},
}

// ConfigKeys lists the settable keys in sorted order.
func ConfigKeys() []string {
	out := make([]string, 0, len(configKeys))
	for k := range configKeys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Set assigns one dotted key from its string form.
func (c *GlobalConfig) Set(key, value string) error {
	k, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}
	if err := k.set(c, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// Get returns one dotted key's value (nil when unset).
func (c *GlobalConfig) Get(key string) (any, error) {
	k, ok := configKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
	return k.get(c), nil
}
