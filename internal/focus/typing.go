package focus

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"cardwrite/internal/model"
)

type FinalizeReason string

const (
	ReasonIdle           FinalizeReason = "idle"
	ReasonBlockSwitch    FinalizeReason = "block-switch"
	ReasonReturn         FinalizeReason = "return"
	ReasonStrongBoundary FinalizeReason = "strong-boundary"
	ReasonExplicit       FinalizeReason = "explicit"
	ReasonFocusExit      FinalizeReason = "focus-exit"
)

// TypingBatch is an uncommitted run of coalesced edits to one block.
type TypingBatch struct {
	// BaseSnapshot is the document state before the first edit of the run.
	BaseSnapshot      model.Snapshot
	CoalescingBlockID string
	LastEditAt        time.Time
	Edits             int
}

// FinalizeEvent is emitted once per closed batch, after the save.
type FinalizeEvent struct {
	BlockID string
	Base    model.Snapshot
	Content string
	Reason  FinalizeReason
	Edits   int
}

// TypingCoalescer groups bursts of edits to one block into a single
// undo-relevant batch.
type TypingCoalescer struct {
	e *Engine

	batch         *TypingBatch
	pendingReturn bool
	finalized     int
}

// Pending returns the open batch, if any.
func (t *TypingCoalescer) Pending() (TypingBatch, bool) {
	if t.batch == nil {
		return TypingBatch{}, false
	}
	return *t.batch, true
}

// FinalizedCount returns how many batches were closed since the engine was built.
func (t *TypingCoalescer) FinalizedCount() int { return t.finalized }

// MarkReturn records a plain Return press. The next edit that introduces a line
// break closes the batch if the line before the caret had real content.
func (t *TypingCoalescer) MarkReturn(precedingLine string) {
	t.pendingReturn = strings.TrimSpace(precedingLine) != ""
}

// OnContentChange feeds one surface content change into the coalescer.
func (t *TypingCoalescer) OnContentChange(blockID, oldValue, newValue string) {
	e := t.e
	if e.replaying() || oldValue == newValue {
		return
	}
	if !e.on || blockID == "" || blockID != e.state.EditingBlockID {
		return
	}
	e.live[blockID] = newValue
	e.editSeq++
	if s := e.host.SurfaceFor(blockID); s != nil && s.HasMarkedText() {
		return
	}

	now := e.clock.Now()
	returnBoundary := t.pendingReturn && strings.Count(newValue, "\n") > strings.Count(oldValue, "\n")
	t.pendingReturn = false

	if b := t.batch; b != nil {
		switch {
		case now.Sub(b.LastEditAt) > e.cfg.TypingIdle:
			t.finalize(ReasonIdle, oldValue)
		case b.CoalescingBlockID != blockID:
			t.finalize(ReasonBlockSwitch, e.LiveContent(b.CoalescingBlockID))
		case returnBoundary:
			t.finalize(ReasonReturn, oldValue)
		case isStrongBoundary(oldValue, newValue, e.cfg.StrongBoundaryChars):
			t.finalize(ReasonStrongBoundary, oldValue)
		}
	}

	if t.batch == nil {
		base := e.CommittedContent(blockID)
		t.batch = &TypingBatch{
			BaseSnapshot:      t.capture(blockID, base),
			CoalescingBlockID: blockID,
		}
	}
	t.batch.LastEditAt = now
	t.batch.Edits++
	e.sched.After(e.cfg.TypingIdle, t.idleCheck)
}

func (t *TypingCoalescer) capture(blockID, content string) model.Snapshot {
	overrides := map[string]string{blockID: content}
	if t.e.persist == nil {
		return model.Snapshot{TakenAt: t.e.clock.Now(), Blocks: overrides}
	}
	return t.e.persist.CaptureState(overrides)
}

func (t *TypingCoalescer) idleCheck() {
	b := t.batch
	if b == nil || !t.e.on {
		return
	}
	if t.e.clock.Now().Sub(b.LastEditAt) < t.e.cfg.TypingIdle {
		return
	}
	t.finalize(ReasonIdle, t.e.LiveContent(b.CoalescingBlockID))
}

// Finalize closes the open batch with the block's live content. Reports
// whether a batch was open.
func (t *TypingCoalescer) Finalize(reason FinalizeReason) bool {
	if t.batch == nil {
		return false
	}
	t.finalize(reason, t.e.LiveContent(t.batch.CoalescingBlockID))
	return true
}

// finalizeFor closes the open batch only if it belongs to blockID.
func (t *TypingCoalescer) finalizeFor(blockID string, reason FinalizeReason) bool {
	if t.batch == nil || t.batch.CoalescingBlockID != blockID {
		return false
	}
	return t.Finalize(reason)
}

func (t *TypingCoalescer) finalize(reason FinalizeReason, content string) {
	e := t.e
	b := t.batch
	t.batch = nil
	id := b.CoalescingBlockID
	e.doc.UpdateContent(id, content)
	e.committed[id] = content
	e.save(string(reason))
	t.finalized++
	e.logf("batch finalized block=%s reason=%s edits=%d", id, reason, b.Edits)
	e.listener.BatchFinalized(FinalizeEvent{
		BlockID: id,
		Base:    b.BaseSnapshot,
		Content: content,
		Reason:  reason,
		Edits:   b.Edits,
	})
}

func (t *TypingCoalescer) discard() {
	t.batch = nil
	t.pendingReturn = false
}

// isStrongBoundary reports a single large insert or delete that spans a
// sentence or paragraph break.
func isStrongBoundary(oldValue, newValue string, minChars int) bool {
	inserted, deleted := changedSpans(oldValue, newValue)
	span := inserted
	if utf8.RuneCountInString(deleted) > utf8.RuneCountInString(span) {
		span = deleted
	}
	if utf8.RuneCountInString(span) < minChars {
		return false
	}
	return strings.Contains(span, "\n") || hasSentenceEnd(span)
}

// changedSpans trims the common prefix and suffix and returns what was
// inserted and what was deleted.
func changedSpans(oldValue, newValue string) (inserted, deleted string) {
	p := 0
	for p < len(oldValue) && p < len(newValue) {
		ro, so := utf8.DecodeRuneInString(oldValue[p:])
		rn, sn := utf8.DecodeRuneInString(newValue[p:])
		if ro != rn || so != sn {
			break
		}
		p += so
	}
	s := 0
	for s < len(oldValue)-p && s < len(newValue)-p {
		ro, so := utf8.DecodeLastRuneInString(oldValue[:len(oldValue)-s])
		rn, sn := utf8.DecodeLastRuneInString(newValue[:len(newValue)-s])
		if ro != rn || so != sn || s+so > len(oldValue)-p || s+sn > len(newValue)-p {
			break
		}
		s += so
	}
	return newValue[p : len(newValue)-s], oldValue[p : len(oldValue)-s]
}

func hasSentenceEnd(s string) bool {
	rs := []rune(s)
	for i, r := range rs {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(rs) && unicode.IsSpace(rs[i+1]) {
			return true
		}
	}
	return false
}
