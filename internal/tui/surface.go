package tui

import (
	"strings"

	"cardwrite/internal/focus"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// cardSurface is one editor slot in the focus-mode stack. Slots are recycled:
// the stack rebinds them to other cards when the column changes, so the card
// a slot renders is only known through the stack.
type cardSurface struct {
	blockID string
	ta      textarea.Model

	width   int
	frame   focus.Rect
	scrollY int
	focused bool
}

var _ focus.Surface = (*cardSurface)(nil)

func newCardSurface(width int) *cardSurface {
	ta := textarea.New()
	ta.Prompt = ""
	ta.Placeholder = ""
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = false
	s := &cardSurface{ta: ta}
	s.setWidth(width)
	return s
}

func (s *cardSurface) setWidth(w int) {
	if w < 8 {
		w = 8
	}
	s.width = w
	s.ta.SetWidth(w)
}

// bind points the slot at blockID with text. The caret lands at the end.
func (s *cardSurface) bind(blockID, text string) {
	s.blockID = blockID
	s.scrollY = 0
	if s.ta.Value() != text {
		s.ta.SetValue(text)
	}
}

func (s *cardSurface) focus() {
	s.focused = true
	s.ta.Focus()
}

func (s *cardSurface) blur() {
	s.focused = false
	s.ta.Blur()
}

// lines wraps one cell short of the slot width so a caret after the last
// rune still fits on its row.
func (s *cardSurface) lines() []visualLine { return wrapLines(s.Text(), s.width-1) }

func (s *cardSurface) Text() string { return s.ta.Value() }

func (s *cardSurface) Caret() int {
	li := s.ta.LineInfo()
	return offsetOf(s.Text(), s.ta.Line(), li.StartColumn+li.ColumnOffset)
}

func (s *cardSurface) SetCaret(offset int) {
	row, col := rowCol(s.Text(), focus.ClampOffset(s.Text(), offset))
	// Wrapped rows take several steps; the bound keeps a broken textarea from
	// spinning.
	for guard := 2*len(s.lines()) + 2; guard > 0 && s.ta.Line() > row; guard-- {
		s.ta.CursorUp()
	}
	for guard := 2*len(s.lines()) + 2; guard > 0 && s.ta.Line() < row; guard-- {
		s.ta.CursorDown()
	}
	s.ta.SetCursor(col)
}

// Terminals deliver composed text only, so there is never marked text.
func (s *cardSurface) HasMarkedText() bool { return false }

func (s *cardSurface) CaretRect(offset int) focus.Rect {
	text := s.Text()
	row, col := rowCol(text, offset)
	lines := s.lines()
	i := lineAt(lines, row, col)
	logical := []rune(strings.Split(text, "\n")[row])
	return focus.Rect{X: cellsBetween(logical, lines[i].start, col), Y: i, W: 1, H: 1}
}

func (s *cardSurface) Frame() focus.Rect { return s.frame }

func (s *cardSurface) VisualLine(offset int) (line, total int) {
	text := s.Text()
	row, col := rowCol(text, offset)
	lines := s.lines()
	return lineAt(lines, row, col), len(lines)
}

func (s *cardSurface) ContentHeight() int { return len(s.lines()) }

func (s *cardSurface) ScrollOrigin() int { return s.scrollY }

func (s *cardSurface) SetScrollOrigin(y int) {
	if limit := s.ContentHeight() - 1; y > limit {
		y = limit
	}
	if y < 0 {
		y = 0
	}
	s.scrollY = y
}

// update feeds an editing key to the textarea and reports the text before
// and after.
func (s *cardSurface) update(msg tea.Msg) (before, after string, cmd tea.Cmd) {
	before = s.Text()
	s.ta, cmd = s.ta.Update(msg)
	return before, s.Text(), cmd
}

// moveLine moves the caret one visual line up (-1) or down (+1), keeping the
// display column. It reports whether the caret moved.
func (s *cardSurface) moveLine(delta int) bool {
	text := s.Text()
	row, col := rowCol(text, s.Caret())
	lines := s.lines()
	i := lineAt(lines, row, col)
	j := i + delta
	if j < 0 || j >= len(lines) {
		return false
	}
	logical := strings.Split(text, "\n")
	x := cellsBetween([]rune(logical[row]), lines[i].start, col)
	dst := lines[j]
	s.SetCaret(offsetOf(text, dst.row, colAtCell([]rune(logical[dst.row]), dst, x)))
	return true
}

// offsetAt maps a point in the slot's own rows (after internal scrolling) to
// a caret offset.
func (s *cardSurface) offsetAt(x, y int) int {
	text := s.Text()
	lines := s.lines()
	i := y + s.scrollY
	if i < 0 {
		return 0
	}
	if i >= len(lines) {
		return focus.UTF16Len(text)
	}
	vl := lines[i]
	logical := []rune(strings.Split(text, "\n")[vl.row])
	return offsetOf(text, vl.row, colAtCell(logical, vl, x))
}

// visibleRows is how many rows the slot shows; inactive slots are capped.
func (s *cardSurface) visibleRows(maxRows int) int {
	n := s.ContentHeight() - s.scrollY
	if !s.focused && maxRows > 0 && n > maxRows {
		n = maxRows
	}
	if n < 1 {
		n = 1
	}
	return n
}

// render draws the slot's visible rows, with a block caret when focused.
func (s *cardSurface) render(maxRows int, text, caret lipgloss.Style) string {
	src := s.Text()
	lines := s.lines()
	logical := strings.Split(src, "\n")
	caretLine, caretCol := -1, -1
	if s.focused {
		row, col := rowCol(src, s.Caret())
		caretLine, caretCol = lineAt(lines, row, col), col
	}
	n := s.visibleRows(maxRows)
	out := make([]string, 0, n)
	for i := s.scrollY; i < s.scrollY+n && i < len(lines); i++ {
		vl := lines[i]
		rs := []rune(logical[vl.row])
		seg := string(rs[vl.start:vl.end])
		if i != caretLine {
			out = append(out, text.Width(s.width).Render(seg))
			continue
		}
		at := caretCol - vl.start
		segRunes := []rune(seg)
		under := " "
		if at < len(segRunes) {
			under = string(segRunes[at])
		}
		var b strings.Builder
		b.WriteString(text.Render(string(segRunes[:at])))
		b.WriteString(caret.Render(under))
		if at+1 < len(segRunes) {
			b.WriteString(text.Render(string(segRunes[at+1:])))
		}
		out = append(out, lipgloss.NewStyle().Width(s.width).Render(b.String()))
	}
	return strings.Join(out, "\n")
}
