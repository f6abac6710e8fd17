package tui

import (
	"time"

	"cardwrite/internal/focus"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// cardGap is the blank rows between stacked cards.
const cardGap = 1

// cardStack lays one column of cards out vertically. Slots are reused across
// rebinds.
type cardStack struct {
	width   int
	maxRows int

	column int
	slots  []*cardSurface
	n      int
}

func newCardStack(width, maxRows int) *cardStack {
	return &cardStack{width: width, maxRows: maxRows, column: -1}
}

// bind shows column col with the given cards. live supplies the text of each.
func (st *cardStack) bind(col int, ids []string, live func(string) string) {
	st.column = col
	for len(st.slots) < len(ids) {
		st.slots = append(st.slots, newCardSurface(st.width))
	}
	for i, id := range ids {
		st.slots[i].bind(id, live(id))
	}
	for i := len(ids); i < len(st.slots); i++ {
		st.slots[i].blockID = ""
		st.slots[i].blur()
	}
	st.n = len(ids)
	st.layout()
}

func (st *cardStack) clear() {
	st.bind(-1, nil, nil)
}

func (st *cardStack) setWidth(w int) {
	st.width = w
	for _, s := range st.slots {
		s.setWidth(w)
	}
	st.layout()
}

func (st *cardStack) bound() []*cardSurface { return st.slots[:st.n] }

func (st *cardStack) owns(s *cardSurface) bool {
	for _, b := range st.bound() {
		if b == s {
			return true
		}
	}
	return false
}

func (st *cardStack) slotFor(blockID string) *cardSurface {
	for _, s := range st.bound() {
		if s.blockID == blockID {
			return s
		}
	}
	return nil
}

// layout assigns each bound slot its frame in stack content rows.
func (st *cardStack) layout() {
	y := 0
	for _, s := range st.bound() {
		h := s.visibleRows(st.maxRows)
		s.frame = focus.Rect{X: 0, Y: y, W: st.width, H: h}
		y += h + cardGap
	}
}

func (st *cardStack) contentHeight() int {
	b := st.bound()
	if len(b) == 0 {
		return 0
	}
	last := b[len(b)-1].frame
	return last.MaxY()
}

// slotAt returns the slot covering content row y.
func (st *cardStack) slotAt(y int) *cardSurface {
	for _, s := range st.bound() {
		if y >= s.frame.Y && y < s.frame.MaxY() {
			return s
		}
	}
	return nil
}

// viewportAdapter exposes the focus-mode viewport to the engine.
type viewportAdapter struct {
	vp    *viewport.Model
	stack *cardStack
}

func (a viewportAdapter) VisibleRect() focus.Rect {
	return focus.Rect{X: 0, Y: a.vp.YOffset, W: a.vp.Width, H: a.vp.Height}
}

func (a viewportAdapter) ContentHeight() int { return a.stack.contentHeight() }

// ScrollTo jumps; a terminal cell grid has nothing to animate.
func (a viewportAdapter) ScrollTo(y int, _ bool) {
	if y < 0 {
		y = 0
	}
	a.vp.YOffset = y
}

// tuiHost implements focus.Host on top of the card stack. Focus handoff lands
// on the next loop turn, the way a real toolkit defers first-responder changes.
type tuiHost struct {
	stack *cardStack
	vp    viewportAdapter
	sched *teaScheduler

	focused *cardSurface
	pending *cardSurface
}

var _ focus.Host = (*tuiHost)(nil)

func (h *tuiHost) CurrentFocusedSurface() focus.Surface {
	if h.focused == nil {
		return nil
	}
	return h.focused
}

func (h *tuiHost) RequestFocus(s focus.Surface) bool {
	cs, ok := s.(*cardSurface)
	if !ok || !h.stack.owns(cs) {
		return false
	}
	if cs == h.focused {
		return true
	}
	h.pending = cs
	h.sched.After(0, h.applyFocus)
	return true
}

func (h *tuiHost) applyFocus() {
	cs := h.pending
	h.pending = nil
	if cs == nil || !h.stack.owns(cs) || cs.blockID == "" {
		return
	}
	if h.focused != nil && h.focused != cs {
		h.focused.blur()
	}
	h.focused = cs
	cs.focus()
	h.stack.layout()
}

func (h *tuiHost) SurfaceFor(blockID string) focus.Surface {
	if s := h.stack.slotFor(blockID); s != nil {
		return s
	}
	return nil
}

func (h *tuiHost) Surfaces() []focus.BoundSurface {
	out := make([]focus.BoundSurface, 0, h.stack.n)
	for _, s := range h.stack.bound() {
		out = append(out, focus.BoundSurface{BlockID: s.blockID, Surface: s})
	}
	return out
}

func (h *tuiHost) Viewport() focus.Viewport { return h.vp }

func (h *tuiHost) RestoreFocus() {
	if h.focused != nil {
		h.focused.blur()
	}
	h.focused = nil
	h.pending = nil
}

// focusedSlot returns the focused slot if it still renders a card.
func (h *tuiHost) focusedSlot() *cardSurface {
	if h.focused == nil || h.focused.blockID == "" {
		return nil
	}
	return h.focused
}

// deferredTaskMsg fires a task queued through teaScheduler.
type deferredTaskMsg struct{ id uint64 }

type deferredTask struct {
	id    uint64
	delay time.Duration
}

// teaScheduler turns engine timers into tea.Tick commands. Tasks only run
// from Update, so they never race the model.
type teaScheduler struct {
	next   uint64
	tasks  map[uint64]func()
	queued []deferredTask
}

var _ focus.Scheduler = (*teaScheduler)(nil)

func newTeaScheduler() *teaScheduler {
	return &teaScheduler{tasks: map[uint64]func(){}}
}

func (s *teaScheduler) After(d time.Duration, fn func()) {
	s.next++
	s.tasks[s.next] = fn
	s.queued = append(s.queued, deferredTask{id: s.next, delay: d})
}

// drain returns the tick commands for every task queued since the last call.
func (s *teaScheduler) drain() tea.Cmd {
	if len(s.queued) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(s.queued))
	for _, t := range s.queued {
		id := t.id
		cmds = append(cmds, tea.Tick(t.delay, func(time.Time) tea.Msg { return deferredTaskMsg{id: id} }))
	}
	s.queued = s.queued[:0]
	return tea.Batch(cmds...)
}

// run executes task id once. Unknown ids (already run) are ignored.
func (s *teaScheduler) run(id uint64) bool {
	fn, ok := s.tasks[id]
	if !ok {
		return false
	}
	delete(s.tasks, id)
	fn()
	return true
}

func (s *teaScheduler) pending() int { return len(s.tasks) }
