package focus

import (
	"time"

	"cardwrite/internal/model"
)

// Rect is an axis-aligned rectangle in rows/columns.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) MaxY() int { return r.Y + r.H }

// Surface is a rendering/input object displaying one block's text. The engine
// never owns surfaces; it compares them by identity, so implementations must
// be pointer types.
type Surface interface {
	Text() string
	// Caret returns the caret as a UTF-16 code-unit offset.
	Caret() int
	// SetCaret places the caret at a UTF-16 code-unit offset.
	SetCaret(offset int)
	// HasMarkedText reports an active input-method composition.
	HasMarkedText() bool

	// CaretRect returns the caret rectangle for offset in surface content
	// coordinates (before internal scrolling).
	CaretRect(offset int) Rect
	// Frame returns the surface's position in the outer container's content
	// coordinates.
	Frame() Rect
	// VisualLine returns the visual (wrapped) line holding offset and the
	// total number of visual lines.
	VisualLine(offset int) (line, total int)
	ContentHeight() int

	ScrollOrigin() int
	SetScrollOrigin(y int)
}

// BoundSurface pairs a surface with the block the host rendered into it.
type BoundSurface struct {
	BlockID string
	Surface Surface
}

// Viewport is the outer scroll container holding the block stack.
type Viewport interface {
	VisibleRect() Rect
	ContentHeight() int
	ScrollTo(y int, animate bool)
}

// Host is the focus capability of the rendering toolkit. Focus handoff may be
// asynchronous: RequestFocus can return before CurrentFocusedSurface reflects
// the change.
type Host interface {
	CurrentFocusedSurface() Surface
	RequestFocus(s Surface) bool
	// SurfaceFor returns the surface whose chrome currently renders blockID.
	SurfaceFor(blockID string) Surface
	// Surfaces lists every surface reachable from the document root.
	Surfaces() []BoundSurface
	Viewport() Viewport
	// RestoreFocus hands keyboard focus back to whatever held it before focus
	// mode was entered.
	RestoreFocus()
}

// Document is the external card tree.
type Document interface {
	ColumnsWithParents() []model.Column
	FindBlock(id string) (model.Block, bool)
	RootBlocks() []model.Block
	UpdateContent(id, content string) bool
}

// Structure is the optional structural editing capability of a Document.
type Structure interface {
	InsertSibling(id string, above bool) (model.Block, error)
	Delete(id string) error
}

// Persistence saves the document and records undo snapshots.
type Persistence interface {
	SaveAll() error
	TakeSnapshot() error
	CaptureState(overrides map[string]string) model.Snapshot
}

// Scheduler runs fn on the event loop after d. Tasks are never cancelled;
// they re-validate when they run.
type Scheduler interface {
	After(d time.Duration, fn func())
}

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Listener receives engine output. Any method may be left as a no-op.
type Listener interface {
	ActiveChanged(blockID string)
	EditingChanged(blockID string)
	FocusModeChanged(on bool)
	CaretEnsured(blockID string, offset int)
	BatchFinalized(ev FinalizeEvent)
}

// NopListener implements Listener with no-ops; embed it to override a subset.
type NopListener struct{}

func (NopListener) ActiveChanged(string)         {}
func (NopListener) EditingChanged(string)        {}
func (NopListener) FocusModeChanged(bool)        {}
func (NopListener) CaretEnsured(string, int)     {}
func (NopListener) BatchFinalized(FinalizeEvent) {}
