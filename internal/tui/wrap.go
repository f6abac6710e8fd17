package tui

import (
	"strings"

	"cardwrite/internal/focus"

	xansi "github.com/charmbracelet/x/ansi"
)

// visualLine is one wrapped row of a card's text: runes [start, end) of
// logical line row.
type visualLine struct {
	row        int
	start, end int
}

func runeWidth(r rune) int {
	w := xansi.StringWidth(string(r))
	if w < 1 {
		return 1
	}
	return w
}

// wrapLines soft-wraps text at width cells, preferring to break after a
// space. Every logical line yields at least one visual line.
func wrapLines(text string, width int) []visualLine {
	if width < 1 {
		width = 1
	}
	var out []visualLine
	for row, line := range strings.Split(text, "\n") {
		rs := []rune(line)
		if len(rs) == 0 {
			out = append(out, visualLine{row: row})
			continue
		}
		start := 0
		for start < len(rs) {
			w, end, lastSpace := 0, start, -1
			for end < len(rs) {
				cw := runeWidth(rs[end])
				if w+cw > width && end > start {
					break
				}
				w += cw
				if rs[end] == ' ' {
					lastSpace = end
				}
				end++
			}
			if end < len(rs) && lastSpace >= start && lastSpace+1 < end {
				end = lastSpace + 1
			}
			out = append(out, visualLine{row: row, start: start, end: end})
			start = end
		}
	}
	return out
}

// rowCol converts a UTF-16 offset into a logical line and rune column.
func rowCol(text string, offset int) (row, col int) {
	idx := focus.RuneIndex(text, offset)
	for i, r := range []rune(text) {
		if i >= idx {
			break
		}
		if r == '\n' {
			row++
			col = 0
			continue
		}
		col++
	}
	return row, col
}

// offsetOf converts a logical line and rune column into a UTF-16 offset,
// clamping both to the text.
func offsetOf(text string, row, col int) int {
	lines := strings.Split(text, "\n")
	if row >= len(lines) {
		return focus.UTF16Len(text)
	}
	if row < 0 {
		row, col = 0, 0
	}
	runes := 0
	for i := 0; i < row; i++ {
		runes += len([]rune(lines[i])) + 1
	}
	n := len([]rune(lines[row]))
	if col > n {
		col = n
	}
	if col < 0 {
		col = 0
	}
	return focus.UTF16Offset(text, runes+col)
}

// lineAt returns the index of the visual line holding the caret at (row,
// col). A caret at the end of a logical line belongs to its last visual line.
func lineAt(lines []visualLine, row, col int) int {
	last := -1
	for i, vl := range lines {
		if vl.row != row {
			if last >= 0 {
				break
			}
			continue
		}
		last = i
		if col >= vl.start && col < vl.end {
			return i
		}
	}
	if last < 0 {
		return len(lines) - 1
	}
	return last
}

// cellsBetween returns the display width of runes [from, to) of a logical line.
func cellsBetween(line []rune, from, to int) int {
	w := 0
	for i := from; i < to && i < len(line); i++ {
		w += runeWidth(line[i])
	}
	return w
}

// colAtCell maps a display column within visual line vl to a rune column.
func colAtCell(line []rune, vl visualLine, x int) int {
	w := 0
	for i := vl.start; i < vl.end; i++ {
		cw := runeWidth(line[i])
		if x < w+cw {
			return i
		}
		w += cw
	}
	end := vl.end
	// A wrapped line ends in its break space; clicking past it stays on the row.
	if end > vl.start && end < len(line) {
		end--
	}
	return end
}
