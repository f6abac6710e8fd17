package tui

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	envDebugLog = "CARDWRITE_DEBUG_LOG"
	envTUIDebug = "CARDWRITE_TUI_DEBUG"
)

// debugLog appends lines to the file named by CARDWRITE_DEBUG_LOG. The TUI
// owns the terminal, so nothing is ever written to stdout or stderr.
type debugLog struct {
	path string
	now  func() time.Time
}

func newDebugLog() *debugLog {
	return &debugLog{
		path: strings.TrimSpace(os.Getenv(envDebugLog)),
		now:  time.Now,
	}
}

func (l *debugLog) enabled() bool { return l != nil && l.path != "" }

func (l *debugLog) debugLogf(format string, args ...any) {
	if !l.enabled() {
		return
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = fmt.Fprintf(f, "%s %s\n", l.now().Format("15:04:05.000"), fmt.Sprintf(format, args...))
}

func debugOverlayEnabled() bool {
	return strings.TrimSpace(os.Getenv(envTUIDebug)) != ""
}
