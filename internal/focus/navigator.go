package focus

import "strings"

type Direction int

const (
	Up Direction = iota
	Down
)

// FocusNavigator turns navigation and activation intents into block switches
// and caret requests.
type FocusNavigator struct {
	e *Engine

	lastActive string
}

// SetCaretHint records where the caret was in the view shown before focus
// mode. A negative Offset means the prior view had no caret.
func (n *FocusNavigator) SetCaretHint(h CaretHint) {
	n.e.hint = &h
}

// Activate is the single choke point for block switches.
func (n *FocusNavigator) Activate(blockID string, intent CaretIntent) bool {
	e := n.e
	if !e.on {
		return false
	}
	if _, ok := e.doc.FindBlock(blockID); !ok {
		return false
	}
	prev := e.state.EditingBlockID
	if prev == blockID && e.state.ActiveBlockID == blockID && intent.Placement == CaretKeep {
		return true
	}
	if prev != "" && prev != blockID {
		e.Typing.finalizeFor(prev, ReasonBlockSwitch)
		e.commitSession(prev, string(ReasonBlockSwitch))
	}
	e.openSession(blockID)

	prevActive := e.state.ActiveBlockID
	e.state.ActiveBlockID = blockID
	e.state.EditingBlockID = blockID
	n.lastActive = blockID
	if prevActive != blockID {
		e.listener.ActiveChanged(blockID)
	}
	if prev != blockID {
		e.listener.EditingChanged(blockID)
	}
	e.logf("activate block=%s prev=%s placement=%d", blockID, prev, intent.Placement)

	e.Scroll.SetAnchor(intent.Anchor)
	e.Caret.Schedule(CaretRequest{
		Token:            e.nextToken(),
		TargetBlockID:    blockID,
		TargetOffset:     intent.Offset,
		RetriesRemaining: e.cfg.CaretRetries,
		placement:        intent.Placement,
	})
	e.Scroll.NormalizeInactiveOffsets(false, true)
	return true
}

// Navigate crosses to the adjacent block when the caret sits on the boundary
// in direction d. It reports whether the event was consumed; unconsumed events
// belong to normal in-block caret movement.
func (n *FocusNavigator) Navigate(d Direction, repeat bool) bool {
	e := n.e
	if !e.on {
		return false
	}
	id := e.state.ActiveBlockID
	surf := e.host.SurfaceFor(id)
	if surf == nil || !n.atBoundary(surf, id, d) {
		return false
	}
	_, idx, ids := e.columnOf(id)
	if idx < 0 {
		return false
	}
	next := idx + 1
	intent := CaretIntent{Placement: CaretStart, Anchor: ScrollAnchor{Edge: AnchorTop}}
	if d == Up {
		next = idx - 1
		intent = CaretIntent{Placement: CaretEnd, Anchor: ScrollAnchor{Edge: AnchorBottom}}
	}
	if next < 0 || next >= len(ids) {
		return false
	}
	if repeat {
		// Swallow held keys at a boundary so one hold cannot skip blocks.
		return true
	}
	e.setExclusion(e.host.CurrentFocusedSurface())
	return n.Activate(ids[next], intent)
}

// atBoundary judges against the caret the block is about to get when a
// request for it is still in flight, not the surface's leftover caret.
func (n *FocusNavigator) atBoundary(s Surface, blockID string, d Direction) bool {
	caret := n.e.Caret.intended(s, blockID)
	line, total := s.VisualLine(caret)
	if d == Up {
		return caret == 0 && line == 0
	}
	return caret >= UTF16Len(s.Text()) && line >= total-1
}

// OnClick activates blockID from a pointer click. When the click landed in a
// surface legitimately bound to blockID, pointerOffset becomes the caret.
func (n *FocusNavigator) OnClick(blockID string, s Surface, pointerOffset int) bool {
	e := n.e
	if !e.on {
		return false
	}
	if blockID == e.state.ActiveBlockID && blockID == e.state.EditingBlockID {
		// The surface already placed the caret; keep the session as is.
		e.Caret.Cancel()
		e.openSession(blockID)
		if s != nil && !e.Responders.isStale(s, blockID) {
			e.Responders.Remember(s, blockID)
		}
		return true
	}
	intent := CaretAtEnd()
	if n.boundTo(s, blockID) {
		intent = CaretAtOffset(pointerOffset)
	}
	return n.Activate(blockID, intent)
}

func (n *FocusNavigator) boundTo(s Surface, blockID string) bool {
	if s == nil {
		return false
	}
	e := n.e
	if id, ok := e.Responders.BlockFor(s); ok {
		return id == blockID
	}
	return e.host.SurfaceFor(blockID) == s
}

// ToggleFocusMode enters or exits focus mode.
func (n *FocusNavigator) ToggleFocusMode() {
	if n.e.on {
		n.exit()
		return
	}
	n.enter()
}

// Exit leaves focus mode if it is on.
func (n *FocusNavigator) Exit() {
	if n.e.on {
		n.exit()
	}
}

func (n *FocusNavigator) enter() {
	e := n.e
	hint := e.hint
	e.hint = nil
	exitHint := e.exitHint
	e.exitHint = nil

	target := ""
	intent := CaretAtStart()
	switch {
	case hint != nil && n.exists(hint.BlockID):
		target = hint.BlockID
		switch {
		case hint.Offset >= 0:
			intent = CaretAtOffset(hint.Offset)
		case exitHint != nil && exitHint.BlockID == hint.BlockID:
			intent = CaretAtOffset(exitHint.Offset)
		default:
			intent = CaretAtEnd()
		}
	case exitHint != nil && n.exists(exitHint.BlockID):
		target = exitHint.BlockID
		intent = CaretAtOffset(exitHint.Offset)
	case n.exists(n.lastActive):
		target = n.lastActive
		intent = CaretAtEnd()
	default:
		if roots := e.doc.RootBlocks(); len(roots) > 0 {
			target = roots[0].ID
		}
	}
	if target == "" {
		return
	}
	intent.Anchor = ScrollAnchor{Edge: AnchorCenter}

	e.on = true
	e.logf("focus mode on block=%s", target)
	e.listener.FocusModeChanged(true)
	n.Activate(target, intent)
}

func (n *FocusNavigator) exit() {
	e := n.e
	id := e.state.EditingBlockID
	e.Typing.Finalize(ReasonFocusExit)
	e.commitSession(id, string(ReasonFocusExit))
	if id != "" {
		offset := 0
		if s := e.host.SurfaceFor(id); s != nil && s.Text() == e.LiveContent(id) {
			offset = s.Caret()
		} else {
			offset = UTF16Len(e.LiveContent(id))
		}
		e.exitHint = &CaretHint{BlockID: id, Offset: offset}
		n.lastActive = id
	}

	e.reset()
	e.on = false
	e.logf("focus mode off block=%s", id)
	e.listener.ActiveChanged("")
	e.listener.EditingChanged("")
	e.listener.FocusModeChanged(false)
	e.host.RestoreFocus()
}

func (n *FocusNavigator) exists(id string) bool {
	if id == "" {
		return false
	}
	_, ok := n.e.doc.FindBlock(id)
	return ok
}

// LastActive returns the block that was active when focus mode was last left
// (or the current one while on).
func (n *FocusNavigator) LastActive() string { return n.lastActive }

// OnReturnKey records a plain Return press on the editing block.
func (n *FocusNavigator) OnReturnKey() {
	e := n.e
	id := e.state.EditingBlockID
	s := e.host.SurfaceFor(id)
	if !e.on || s == nil {
		return
	}
	text := s.Text()
	before := text[:ByteIndex(text, s.Caret())]
	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		before = before[i+1:]
	}
	e.Typing.MarkReturn(before)
}

// DeleteActive removes the active block and activates a neighbor. Repeated key
// events are ignored.
func (n *FocusNavigator) DeleteActive(repeat bool) bool {
	e := n.e
	st, ok := e.doc.(Structure)
	if !e.on || repeat || !ok {
		return false
	}
	id := e.state.ActiveBlockID
	if id == "" {
		return false
	}
	_, idx, ids := e.columnOf(id)
	neighbor := ""
	switch {
	case idx > 0:
		neighbor = ids[idx-1]
	case idx >= 0 && idx+1 < len(ids):
		neighbor = ids[idx+1]
	}

	parent := ""
	if b, ok := e.doc.FindBlock(id); ok {
		parent = b.Parent()
	}

	e.holdSaves()
	e.Typing.finalizeFor(id, ReasonExplicit)
	e.commitSession(id, string(ReasonExplicit))
	if err := st.Delete(id); err != nil {
		e.logf("delete failed block=%s err=%v", id, err)
		e.releaseSaves("delete", false)
		return false
	}
	e.Responders.forgetBlock(id)
	delete(e.live, id)
	delete(e.committed, id)
	e.state.EditingBlockID = ""
	e.releaseSaves("delete", true)

	if neighbor == "" && n.exists(parent) {
		neighbor = parent
	}
	if neighbor == "" {
		e.state.ActiveBlockID = ""
		n.exit()
		return true
	}
	n.Activate(neighbor, CaretIntent{Placement: CaretEnd, Anchor: ScrollAnchor{Edge: AnchorCenter}})
	return true
}

// InsertSibling creates an empty sibling next to the active block and
// activates it.
func (n *FocusNavigator) InsertSibling(above bool) bool {
	e := n.e
	st, ok := e.doc.(Structure)
	if !e.on || !ok || e.state.ActiveBlockID == "" {
		return false
	}
	id := e.state.ActiveBlockID
	e.holdSaves()
	e.Typing.finalizeFor(id, ReasonExplicit)
	e.commitSession(id, string(ReasonExplicit))
	b, err := st.InsertSibling(id, above)
	if err != nil {
		e.logf("insert failed block=%s err=%v", id, err)
		e.releaseSaves("insert", false)
		return false
	}
	e.releaseSaves("insert", true)
	return n.Activate(b.ID, CaretIntent{Placement: CaretStart, Anchor: ScrollAnchor{Edge: AnchorCenter}})
}
