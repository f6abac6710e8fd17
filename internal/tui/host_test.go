package tui

import (
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
)

func textOf(m map[string]string) func(string) string {
	return func(id string) string { return m[id] }
}

func newTestHost(ids []string, texts map[string]string) *tuiHost {
	st := newCardStack(40, 3)
	st.bind(0, ids, textOf(texts))
	vp := viewport.New(40, 10)
	return &tuiHost{stack: st, vp: viewportAdapter{vp: &vp, stack: st}, sched: newTeaScheduler()}
}

func TestTeaScheduler_RunsEachTaskOnce(t *testing.T) {
	s := newTeaScheduler()
	var ran []int
	s.After(10*time.Millisecond, func() { ran = append(ran, 1) })
	s.After(0, func() { ran = append(ran, 2) })

	if s.pending() != 2 {
		t.Fatalf("expected 2 pending tasks, got %d", s.pending())
	}
	if cmd := s.drain(); cmd == nil {
		t.Fatalf("expected a command for queued tasks")
	}
	if cmd := s.drain(); cmd != nil {
		t.Fatalf("expected nothing new to drain")
	}
	if !s.run(2) || !s.run(1) {
		t.Fatalf("expected both tasks to run")
	}
	if s.run(1) {
		t.Fatalf("expected a second run of the same id to be ignored")
	}
	if len(ran) != 2 || ran[0] != 2 || ran[1] != 1 {
		t.Fatalf("unexpected run order %v", ran)
	}
	if s.pending() != 0 {
		t.Fatalf("expected no pending tasks, got %d", s.pending())
	}
}

func TestCardStack_LayoutStacksFramesWithGap(t *testing.T) {
	h := newTestHost([]string{"a", "b", "c"}, map[string]string{
		"a": "one",
		"b": "1\n2\n3\n4\n5",
		"c": "x\ny",
	})
	st := h.stack

	frames := []struct{ y, h int }{{0, 1}, {2, 3}, {6, 2}}
	for i, s := range st.bound() {
		f := s.Frame()
		if f.Y != frames[i].y || f.H != frames[i].h {
			t.Fatalf("slot %d: expected y=%d h=%d, got %+v", i, frames[i].y, frames[i].h, f)
		}
	}
	if got := st.contentHeight(); got != 8 {
		t.Fatalf("expected content height 8, got %d", got)
	}
	if s := st.slotAt(3); s == nil || s.blockID != "b" {
		t.Fatalf("expected row 3 in b, got %+v", s)
	}
	if s := st.slotAt(5); s != nil {
		t.Fatalf("expected the gap row to hit nothing, got %s", s.blockID)
	}
}

func TestCardStack_RebindRecyclesSlots(t *testing.T) {
	h := newTestHost([]string{"a", "b", "c"}, map[string]string{"a": "A", "b": "B", "c": "C"})
	st := h.stack
	first := st.slots[0]

	st.bind(1, []string{"d"}, textOf(map[string]string{"d": "D"}))
	if len(st.bound()) != 1 || st.slots[0] != first {
		t.Fatalf("expected the first slot to be reused")
	}
	if first.blockID != "d" || first.Text() != "D" {
		t.Fatalf("expected the slot rebound to d, got %s %q", first.blockID, first.Text())
	}
	if st.slots[1].blockID != "" {
		t.Fatalf("expected unused slots to be unbound")
	}
	if st.slotFor("a") != nil {
		t.Fatalf("expected no slot for a card outside the column")
	}
	if st.owns(st.slots[2]) {
		t.Fatalf("expected an unbound slot not to be owned")
	}
}

func TestTUIHost_FocusLandsOnNextTurn(t *testing.T) {
	h := newTestHost([]string{"a", "b"}, map[string]string{"a": "A", "b": "B"})
	if h.CurrentFocusedSurface() != nil {
		t.Fatalf("expected a nil interface before any focus")
	}

	b := h.SurfaceFor("b")
	if !h.RequestFocus(b) {
		t.Fatalf("expected the request to be accepted")
	}
	if h.CurrentFocusedSurface() != nil {
		t.Fatalf("expected focus to be deferred")
	}
	if !h.sched.run(h.sched.next) {
		t.Fatalf("expected a queued focus task")
	}
	if h.CurrentFocusedSurface() != b {
		t.Fatalf("expected b focused")
	}
	if !h.focusedSlot().focused {
		t.Fatalf("expected the slot to render as focused")
	}

	if h.RequestFocus(newCardSurface(40)) {
		t.Fatalf("expected a foreign surface to be refused")
	}

	h.RestoreFocus()
	if h.CurrentFocusedSurface() != nil || h.focusedSlot() != nil {
		t.Fatalf("expected no focus after restore")
	}
}

func TestTUIHost_FocusDroppedWhenSlotUnbound(t *testing.T) {
	h := newTestHost([]string{"a", "b"}, map[string]string{"a": "A", "b": "B"})
	b := h.SurfaceFor("b")
	h.RequestFocus(b)
	h.stack.clear()
	h.sched.run(h.sched.next)
	if h.CurrentFocusedSurface() != nil {
		t.Fatalf("expected the stale request to be dropped")
	}
}

func TestViewportAdapter(t *testing.T) {
	h := newTestHost([]string{"a"}, map[string]string{"a": "A"})
	vp := h.Viewport()
	vp.ScrollTo(-4, true)
	if got := vp.VisibleRect(); got.Y != 0 || got.H != 10 || got.W != 40 {
		t.Fatalf("unexpected visible rect %+v", got)
	}
	vp.ScrollTo(7, false)
	if got := vp.VisibleRect().Y; got != 7 {
		t.Fatalf("expected offset 7, got %d", got)
	}
	if got := vp.ContentHeight(); got != 1 {
		t.Fatalf("expected content height 1, got %d", got)
	}
}
