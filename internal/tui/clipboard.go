package tui

import (
	"strings"

	"github.com/atotto/clipboard"
)

// writeClipboard is swapped out in tests; the system clipboard is not
// available in CI.
var writeClipboard = clipboard.WriteAll

// copyCard puts the live text of blockID on the system clipboard.
func (m appModel) copyCard(blockID string) {
	if blockID == "" {
		m.setStatus("no card selected", false)
		return
	}
	text := m.ctl.engine.LiveContent(blockID)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if err := writeClipboard(text); err != nil {
		m.setStatus("copy failed: "+err.Error(), true)
		return
	}
	m.setStatus("copied card", false)
}
