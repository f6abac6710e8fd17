package tui

import (
	"fmt"

	"cardwrite/internal/focus"
	"cardwrite/internal/store"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	maxUndo     = 100
	maxHeldKeys = 64
)

// undoEntry restores one card to its content before a typing batch.
type undoEntry struct {
	blockID string
	content string
}

// heldKeys are keystrokes for blockID that arrived before its card had focus.
type heldKeys struct {
	blockID string
	msgs    []tea.Msg
}

// controller owns the document, the focus engine and the focus-mode host. It
// lives behind a pointer so the bubbletea model can stay a value.
type controller struct {
	session *store.Session
	doc     *store.Document
	engine  *focus.Engine
	host    *tuiHost
	sched   *teaScheduler
	vp      *viewport.Model
	log     *debugLog

	undo []undoEntry
	held heldKeys
	// onFocusMode is called after focus mode toggles.
	onFocusMode func(on bool)
	// onNotice surfaces a transient message to the user.
	onNotice func(string)
}

var _ focus.Listener = (*controller)(nil)

func newController(sess *store.Session, cfg focus.Config, log *debugLog, opts ...focus.Option) *controller {
	vp := viewport.New(80, 20)
	c := &controller{
		session: sess,
		doc:     sess.Document(),
		sched:   newTeaScheduler(),
		vp:      &vp,
		log:     log,
	}
	stack := newCardStack(76, previewRows)
	c.host = &tuiHost{
		stack: stack,
		vp:    viewportAdapter{vp: c.vp, stack: stack},
		sched: c.sched,
	}
	base := []focus.Option{
		focus.WithConfig(cfg),
		focus.WithListener(c),
		focus.WithLogf(log.debugLogf),
	}
	c.engine = focus.New(c.doc, sess, c.host, c.sched, append(base, opts...)...)
	return c
}

// columnIDs returns the column holding blockID as card ids.
func (c *controller) columnIDs(blockID string) (int, []string) {
	for _, col := range c.doc.ColumnsWithParents() {
		if col.IndexOf(blockID) < 0 {
			continue
		}
		bs := col.Blocks()
		ids := make([]string, len(bs))
		for i, b := range bs {
			ids[i] = b.ID
		}
		return col.Index, ids
	}
	return -1, nil
}

// syncStack rebinds the stack when the active card's column changed shape.
func (c *controller) syncStack(blockID string) {
	st := c.host.stack
	if blockID == "" {
		st.clear()
		return
	}
	col, ids := c.columnIDs(blockID)
	if col == st.column && sameIDs(ids, st.bound()) {
		return
	}
	c.log.debugLogf("rebind column=%d cards=%d", col, len(ids))
	st.bind(col, ids, c.engine.LiveContent)
}

func sameIDs(ids []string, slots []*cardSurface) bool {
	if len(ids) != len(slots) {
		return false
	}
	for i := range ids {
		if slots[i].blockID != ids[i] {
			return false
		}
	}
	return true
}

func (c *controller) ActiveChanged(blockID string) { c.syncStack(blockID) }

func (c *controller) EditingChanged(string) {}

func (c *controller) FocusModeChanged(on bool) {
	if !on {
		c.dropHeld()
		c.undo = nil
		c.vp.YOffset = 0
	}
	if c.onFocusMode != nil {
		c.onFocusMode(on)
	}
}

func (c *controller) CaretEnsured(blockID string, offset int) {
	c.log.debugLogf("caret ensured block=%s offset=%d", blockID, offset)
	if len(c.held.msgs) > 0 {
		// Replayed edits bump the edit sequence, so caret follow-ups stand down.
		c.sched.After(0, c.replayHeld)
	}
}

// hold buffers a key typed while focus moves to the editing card.
func (c *controller) hold(msg tea.Msg) {
	id := c.engine.State().EditingBlockID
	if id == "" {
		return
	}
	if c.held.blockID != id {
		c.dropHeld()
		c.held.blockID = id
	}
	if len(c.held.msgs) >= maxHeldKeys {
		c.notice("typing ahead of the card switch: key dropped")
		return
	}
	c.held.msgs = append(c.held.msgs, msg)
}

// replayHeld feeds buffered keys to the card they were typed for.
func (c *controller) replayHeld() {
	held := c.held
	c.held = heldKeys{}
	if len(held.msgs) == 0 {
		return
	}
	s := c.editingSlot()
	if s == nil || s.blockID != held.blockID {
		c.held = held
		c.dropHeld()
		return
	}
	c.log.debugLogf("replay held keys block=%s n=%d", held.blockID, len(held.msgs))
	for _, msg := range held.msgs {
		c.edit(msg)
	}
}

func (c *controller) dropHeld() {
	if n := len(c.held.msgs); n > 0 {
		c.notice(fmt.Sprintf("%d keys dropped while switching cards", n))
	}
	c.held = heldKeys{}
}

func (c *controller) notice(s string) {
	c.log.debugLogf("notice %s", s)
	if c.onNotice != nil {
		c.onNotice(s)
	}
}

func (c *controller) BatchFinalized(ev focus.FinalizeEvent) {
	before, ok := ev.Base.Content(ev.BlockID)
	if !ok || before == ev.Content {
		return
	}
	c.undo = append(c.undo, undoEntry{blockID: ev.BlockID, content: before})
	if len(c.undo) > maxUndo {
		c.undo = c.undo[len(c.undo)-maxUndo:]
	}
}

// editingSlot returns the focused slot when it renders the editing card.
func (c *controller) editingSlot() *cardSurface {
	s := c.host.focusedSlot()
	if s == nil || s.blockID != c.engine.State().EditingBlockID {
		return nil
	}
	return s
}

// edit feeds a key to the editing card and reports the change to the engine.
func (c *controller) edit(msg tea.Msg) tea.Cmd {
	s := c.editingSlot()
	if s == nil {
		c.hold(msg)
		return nil
	}
	before, after, cmd := s.update(msg)
	if before != after {
		c.engine.Typing.OnContentChange(s.blockID, before, after)
		c.host.stack.layout()
	} else {
		c.engine.Caret.Cancel()
	}
	c.engine.Scroll.EnsureVisible(c.engine.Scroll.Typewriter)
	return cmd
}

// navigate crosses blocks at a boundary, otherwise moves the caret one
// visual line. On the first or last line the caret goes to the text edge.
func (c *controller) navigate(d focus.Direction, repeat bool) {
	if c.engine.Navigator.Navigate(d, repeat) {
		return
	}
	s := c.editingSlot()
	if s == nil {
		return
	}
	if req, ok := c.engine.Caret.Pending(); ok && req.TargetBlockID == s.blockID {
		// The caret has not landed yet; moving from the old one would lose it.
		return
	}
	delta := 1
	if d == focus.Up {
		delta = -1
	}
	if !s.moveLine(delta) {
		if d == focus.Up {
			s.SetCaret(0)
		} else {
			s.SetCaret(focus.UTF16Len(s.Text()))
		}
	}
	c.engine.Caret.Cancel()
	c.engine.Scroll.EnsureVisible(c.engine.Scroll.Typewriter)
}

// click routes a press at content coordinates of the stack.
func (c *controller) click(x, y int) {
	s := c.host.stack.slotAt(y)
	if s == nil {
		return
	}
	off := s.offsetAt(x, y-s.frame.Y)
	if s == c.editingSlot() {
		s.SetCaret(off)
	}
	c.engine.Navigator.OnClick(s.blockID, s, off)
	c.engine.Scroll.EnsureVisible(false)
}

// scrollCard scrolls the internal rows of a clipped inactive card. It reports
// whether the card took the scroll.
func (c *controller) scrollCard(y, delta int) bool {
	s := c.host.stack.slotAt(y)
	if s == nil || s.focused || s.ContentHeight() <= previewRows {
		return false
	}
	next := s.scrollY + delta
	if next < 0 || next > s.ContentHeight()-previewRows {
		return true
	}
	s.SetScrollOrigin(next)
	return true
}

// scrollView scrolls the focus-mode viewport by delta rows.
func (c *controller) scrollView(delta int) {
	y := c.vp.YOffset + delta
	if limit := c.host.stack.contentHeight() - c.vp.Height; y > limit {
		y = limit
	}
	if y < 0 {
		y = 0
	}
	c.vp.YOffset = y
	c.engine.Scroll.NormalizeInactiveOffsets(false, false)
}

// save closes the open batch and writes the document.
func (c *controller) save() error {
	if c.engine.Typing.Finalize(focus.ReasonExplicit) {
		return nil
	}
	if err := c.session.SaveAll(); err != nil {
		return err
	}
	return c.session.TakeSnapshot()
}

// undoLast restores the card changed by the most recent typing batch.
func (c *controller) undoLast() bool {
	e := c.engine
	if !e.InFocusMode() {
		return false
	}
	e.Typing.Finalize(focus.ReasonExplicit)
	if len(c.undo) == 0 {
		return false
	}
	u := c.undo[len(c.undo)-1]
	c.undo = c.undo[:len(c.undo)-1]
	if _, ok := c.doc.FindBlock(u.blockID); !ok {
		return false
	}

	e.BeginUndoReplay()
	c.doc.UpdateContent(u.blockID, u.content)
	if s := c.host.stack.slotFor(u.blockID); s != nil {
		s.bind(u.blockID, u.content)
	}
	e.EndUndoReplay()
	if err := c.session.SaveAll(); err != nil {
		c.log.debugLogf("undo save failed err=%v", err)
	}
	c.host.stack.layout()

	if e.State().ActiveBlockID != u.blockID {
		e.Navigator.Activate(u.blockID, focus.CaretIntent{Placement: focus.CaretEnd, Anchor: focus.ScrollAnchor{Edge: focus.AnchorCenter}})
	} else {
		e.Caret.Cancel()
		e.Scroll.EnsureVisible(e.Scroll.Typewriter)
	}
	return true
}
