package tui

import (
	"fmt"
	"strings"

	"cardwrite/internal/model"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

func (m appModel) View() string {
	if m.width == 0 {
		return ""
	}
	var body string
	if m.ctl.engine.InFocusMode() {
		body = m.viewFocus()
	} else {
		body = m.viewOverview()
	}
	parts := []string{m.viewHeader(), body}
	if m.ui.showDebug {
		parts = append(parts, m.viewDebug())
	}
	parts = append(parts, m.viewFooter())
	return strings.Join(parts, "\n")
}

func (m appModel) viewHeader() string {
	title := strings.TrimSpace(m.ctl.doc.Title)
	if title == "" {
		title = "Untitled"
	}
	parts := []string{"cardwrite", title}
	e := m.ctl.engine
	if e.InFocusMode() {
		col, ids := m.ctl.columnIDs(e.State().ActiveBlockID)
		pos := 0
		for i, id := range ids {
			if id == e.State().ActiveBlockID {
				pos = i + 1
			}
		}
		parts = append(parts, fmt.Sprintf("column %d", col+1), fmt.Sprintf("card %d/%d", pos, len(ids)))
		if e.Scroll.Typewriter {
			parts = append(parts, "typewriter")
		}
	}
	return xansi.Truncate(styleHeader().Render(strings.Join(parts, "  ")), m.width, "…")
}

func (m appModel) viewFooter() string {
	if m.ui.status != "" {
		st := styleMuted()
		if m.ui.statusErr {
			st = styleError()
		}
		return xansi.Truncate(st.Render(m.ui.status), m.width, "…")
	}
	var help string
	if m.ctl.engine.InFocusMode() {
		help = "esc: overview  alt+↑/↓: new card  alt+⌫: delete  ctrl+t: typewriter  ctrl+y: copy  ctrl+z: undo  ctrl+s: save  ctrl+c: quit"
	} else {
		help = "enter/esc: write  ←↑↓→: move  n: new card  tab: new child  y: copy  ctrl+c: quit"
	}
	return xansi.Truncate(styleMuted().Render(help), m.width, "…")
}

func (m appModel) viewDebug() string {
	e := m.ctl.engine
	st := e.State()
	batch := "-"
	if b, ok := e.Typing.Pending(); ok {
		batch = fmt.Sprintf("%s(%d)", b.CoalescingBlockID, b.Edits)
	}
	cs := e.Caret.Stats()
	line := fmt.Sprintf("active=%s editing=%s surface=%s token=%d batch=%s caret(ok=%d retry=%d drop=%d gave-up=%d) tasks=%d",
		st.ActiveBlockID, st.EditingBlockID, st.EditingSurfaceBlockID, e.Token(), batch,
		cs.Applied, cs.Retried, cs.Dropped, cs.Exhausted, m.ctl.sched.pending())
	return xansi.Truncate(styleMuted().Render(line), m.width, "…")
}

// bodyHeight is the rows between header and footer.
func (m appModel) bodyHeight() int {
	h := m.height - 2
	if m.ui.showDebug {
		h--
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (m appModel) viewFocus() string {
	c := m.ctl
	active := c.engine.State().ActiveBlockID
	var rows []string
	for i, s := range c.host.stack.bound() {
		if i > 0 {
			for g := 0; g < cardGap; g++ {
				rows = append(rows, "")
			}
		}
		card := s.render(previewRows, styleCardText(), styleCaret())
		rows = append(rows, styleActiveMarker(s.blockID == active).Render(card))
	}
	c.vp.SetContent(strings.Join(rows, "\n"))
	pad := strings.Repeat(" ", m.panelX())
	lines := strings.Split(c.vp.View(), "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}

// columnWidth is the overview width of one column, borders included.
func (m appModel) columnWidth(n int) int {
	if n > 3 {
		n = 3
	}
	if n < 1 {
		n = 1
	}
	w := m.width / n
	if w > 48 {
		w = 48
	}
	if w < 24 {
		w = 24
	}
	return w
}

func (m appModel) viewOverview() string {
	cols := m.ctl.doc.ColumnsWithParents()
	h := m.bodyHeight()
	if len(cols) == 0 {
		return lipgloss.Place(m.width, h, lipgloss.Center, lipgloss.Center,
			styleMuted().Render("This document has no cards. Press n to write the first one."))
	}

	selCol := 0
	for _, col := range cols {
		if col.IndexOf(m.ui.selectedID) >= 0 {
			selCol = col.Index
		}
	}
	w := m.columnWidth(len(cols))
	fit := m.width / w
	if fit < 1 {
		fit = 1
	}
	first := selCol - fit + 1
	if first < 0 {
		first = 0
	}

	var rendered []string
	for i := first; i < len(cols) && i < first+fit; i++ {
		rendered = append(rendered, m.viewColumn(cols[i], w, h))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// viewColumn renders one column, scrolled so the selected card is visible.
func (m appModel) viewColumn(col model.Column, w, h int) string {
	inner := w - 4
	var lines []string
	selTop, selBottom := -1, -1
	for gi, g := range col.Groups {
		if gi > 0 {
			lines = append(lines, styleMuted().Render(strings.Repeat("┄", w-2)))
		}
		for _, b := range g.Blocks {
			selected := b.ID == m.ui.selectedID
			card := styleCard(selected).Width(w - 2).Render(m.preview(b, inner))
			if selected {
				selTop = len(lines)
			}
			lines = append(lines, strings.Split(card, "\n")...)
			if selected {
				selBottom = len(lines)
			}
		}
	}

	start := 0
	if selTop >= 0 && selBottom > h {
		start = selTop - h/3
		if start < 0 {
			start = 0
		}
	}
	if start > len(lines) {
		start = len(lines)
	}
	end := start + h
	if end > len(lines) {
		end = len(lines)
	}
	return lipgloss.NewStyle().Width(w).Height(h).Render(strings.Join(lines[start:end], "\n"))
}

// preview renders a card's body for the overview, capped at previewRows.
func (m appModel) preview(b model.Block, width int) string {
	content := strings.TrimSpace(b.Content)
	if content == "" {
		return styleMuted().Render("(empty)")
	}
	var out string
	if m.cfg.PreviewsEnabled() {
		style := ""
		if m.cfg.TUI != nil {
			style = m.cfg.TUI.GlamourStyle
		}
		out = renderPreview(content, style, width)
	} else {
		out = strings.Join(wrapPlain(content, width), "\n")
	}
	lines := strings.Split(out, "\n")
	if len(lines) > previewRows {
		lines = append(lines[:previewRows-1], styleMuted().Render("…"))
	}
	if b.Category != "" {
		lines = append([]string{styleMuted().Render("[" + b.Category + "]")}, lines...)
	}
	return strings.Join(lines, "\n")
}

// wrapPlain soft-wraps text the way focus-mode cards do.
func wrapPlain(text string, width int) []string {
	logical := strings.Split(text, "\n")
	var out []string
	for _, vl := range wrapLines(text, width) {
		rs := []rune(logical[vl.row])
		out = append(out, string(rs[vl.start:vl.end]))
	}
	return out
}
