package focus

import (
	"time"
)

// FocusState tracks three related but distinct notions of "the current block".
// They coincide at rest and diverge while a transition is in flight.
type FocusState struct {
	// ActiveBlockID is the logically selected block.
	ActiveBlockID string
	// EditingBlockID is the block with an open edit session.
	EditingBlockID string
	// EditingSurfaceBlockID is the block the editor chrome has been verified to
	// render (set once a caret request lands).
	EditingSurfaceBlockID string
}

type CaretPlacement int

const (
	// CaretKeep leaves the caret where the surface has it.
	CaretKeep CaretPlacement = iota
	CaretStart
	CaretEnd
	CaretAt
)

// CaretIntent says where the caret should land on activation.
type CaretIntent struct {
	Placement CaretPlacement
	// Offset is a UTF-16 offset, used with CaretAt.
	Offset int
	Anchor ScrollAnchor
}

func CaretAtStart() CaretIntent         { return CaretIntent{Placement: CaretStart} }
func CaretAtEnd() CaretIntent           { return CaretIntent{Placement: CaretEnd} }
func CaretAtOffset(off int) CaretIntent { return CaretIntent{Placement: CaretAt, Offset: off} }

// CaretHint is a caret position captured from the view that was active before
// focus mode was entered.
type CaretHint struct {
	BlockID string
	Offset  int
}

type exclusion struct {
	surface Surface
	until   time.Time
}

// Option configures an Engine.
type Option func(*Engine)

func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg.Normalize() }
}

func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

func WithListener(l Listener) Option {
	return func(e *Engine) {
		if l != nil {
			e.listener = l
		}
	}
}

// WithLogf sets a debug log sink.
func WithLogf(f func(format string, args ...any)) Option {
	return func(e *Engine) {
		if f != nil {
			e.logf = f
		}
	}
}

// Engine is the single context object shared by the focus components. It is
// owned by the document controller and must only be touched from the event
// loop goroutine.
type Engine struct {
	cfg      Config
	doc      Document
	persist  Persistence
	host     Host
	sched    Scheduler
	clock    Clock
	listener Listener
	logf     func(format string, args ...any)

	on    bool
	state FocusState
	// token identifies the authoritative caret request.
	token uint64
	// editSeq increments on every accepted content change.
	editSeq uint64

	excl *exclusion
	// hint is consumed by the next focus-mode entry.
	hint *CaretHint
	// exitHint is recorded on exit so re-entry restores position.
	exitHint *CaretHint

	// committed holds the last saved content per block; live holds the
	// current edit-session content.
	committed map[string]string
	live      map[string]string

	undoReplay int

	// saveHold defers saves; saveDeferred records that one was asked for.
	saveHold     int
	saveDeferred bool

	Responders *ResponderTracker
	Caret      *CaretScheduler
	Scroll     *ScrollSynchronizer
	Typing     *TypingCoalescer
	Navigator  *FocusNavigator
}

func New(doc Document, persist Persistence, host Host, sched Scheduler, opts ...Option) *Engine {
	e := &Engine{
		cfg:       DefaultConfig(),
		doc:       doc,
		persist:   persist,
		host:      host,
		sched:     sched,
		clock:     systemClock{},
		listener:  NopListener{},
		logf:      func(string, ...any) {},
		committed: map[string]string{},
		live:      map[string]string{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Responders = NewResponderTracker()
	e.Caret = &CaretScheduler{e: e}
	e.Scroll = &ScrollSynchronizer{e: e, heights: map[string]int{}}
	e.Typing = &TypingCoalescer{e: e}
	e.Navigator = &FocusNavigator{e: e}
	return e
}

func (e *Engine) Config() Config { return e.cfg }

// SetConfig swaps the tuning knobs. In-flight tasks keep the delays they were
// scheduled with.
func (e *Engine) SetConfig(cfg Config) { e.cfg = cfg.Normalize() }

func (e *Engine) State() FocusState { return e.state }

func (e *Engine) InFocusMode() bool { return e.on }

// Token returns the token of the authoritative caret request.
func (e *Engine) Token() uint64 { return e.token }

// LiveContent returns the edit-session content of blockID, falling back to the
// document.
func (e *Engine) LiveContent(blockID string) string {
	if c, ok := e.live[blockID]; ok {
		return c
	}
	if b, ok := e.doc.FindBlock(blockID); ok {
		return b.Content
	}
	return ""
}

// CommittedContent returns the last saved content of blockID.
func (e *Engine) CommittedContent(blockID string) string {
	if c, ok := e.committed[blockID]; ok {
		return c
	}
	if b, ok := e.doc.FindBlock(blockID); ok {
		return b.Content
	}
	return ""
}

// BeginUndoReplay suppresses typing coalescing while the host replays an undo
// snapshot. Calls nest.
func (e *Engine) BeginUndoReplay() { e.undoReplay++ }

// EndUndoReplay ends a replay and resyncs the committed cache with the
// document, since the replay rewrote content underneath the engine.
func (e *Engine) EndUndoReplay() {
	if e.undoReplay == 0 {
		return
	}
	e.undoReplay--
	if e.undoReplay > 0 {
		return
	}
	for id := range e.live {
		if b, ok := e.doc.FindBlock(id); ok {
			e.live[id] = b.Content
			e.committed[id] = b.Content
		}
	}
}

func (e *Engine) replaying() bool { return e.undoReplay > 0 }

func (e *Engine) nextToken() uint64 {
	e.token++
	return e.token
}

func (e *Engine) setExclusion(s Surface) {
	if s == nil || e.cfg.ExclusionWindow <= 0 {
		return
	}
	e.excl = &exclusion{surface: s, until: e.clock.Now().Add(e.cfg.ExclusionWindow)}
}

func (e *Engine) excluded(s Surface) bool {
	if e.excl == nil || s == nil {
		return false
	}
	if !e.clock.Now().Before(e.excl.until) {
		e.excl = nil
		return false
	}
	return e.excl.surface == s
}

func (e *Engine) clearExclusion() { e.excl = nil }

// openSession starts tracking blockID's content for an edit session.
func (e *Engine) openSession(blockID string) {
	b, ok := e.doc.FindBlock(blockID)
	if !ok {
		return
	}
	if _, ok := e.live[blockID]; !ok {
		e.live[blockID] = b.Content
	}
	if _, ok := e.committed[blockID]; !ok {
		e.committed[blockID] = b.Content
	}
}

// commitSession writes blockID's live content back into the document when it
// differs from the committed content. Reports whether anything was saved.
func (e *Engine) commitSession(blockID, reason string) bool {
	if blockID == "" {
		return false
	}
	live, ok := e.live[blockID]
	if !ok {
		return false
	}
	if live == e.committed[blockID] {
		return false
	}
	e.doc.UpdateContent(blockID, live)
	e.committed[blockID] = live
	e.save(reason)
	return true
}

func (e *Engine) save(reason string) {
	if e.persist == nil {
		return
	}
	if e.saveHold > 0 {
		e.saveDeferred = true
		return
	}
	if err := e.persist.SaveAll(); err != nil {
		e.logf("save failed reason=%s err=%v", reason, err)
	}
	if err := e.persist.TakeSnapshot(); err != nil {
		e.logf("snapshot failed reason=%s err=%v", reason, err)
	}
}

// holdSaves defers saves until the matching releaseSaves, so a structural
// edit and the commit before it land in one write.
func (e *Engine) holdSaves() { e.saveHold++ }

// releaseSaves ends a hold and saves once if anything asked to, or if force.
func (e *Engine) releaseSaves(reason string, force bool) {
	if e.saveHold == 0 {
		return
	}
	e.saveHold--
	if e.saveHold > 0 || !(force || e.saveDeferred) {
		return
	}
	e.saveDeferred = false
	e.save(reason)
}

// columnOf returns the column holding blockID and the block's index in it.
func (e *Engine) columnOf(blockID string) (colIdx, idx int, blocks []string) {
	for _, c := range e.doc.ColumnsWithParents() {
		if i := c.IndexOf(blockID); i >= 0 {
			bs := c.Blocks()
			ids := make([]string, len(bs))
			for j, b := range bs {
				ids[j] = b.ID
			}
			return c.Index, i, ids
		}
	}
	return -1, -1, nil
}

// reset drops all focus-only bookkeeping.
func (e *Engine) reset() {
	e.Responders.Clear()
	e.Typing.discard()
	e.Scroll.reset()
	e.clearExclusion()
	e.nextToken()
	e.live = map[string]string{}
	e.committed = map[string]string{}
	e.state = FocusState{}
}
