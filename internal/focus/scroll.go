package focus

import (
	"math"
	"time"
)

type AnchorEdge int

const (
	AnchorNone AnchorEdge = iota
	AnchorTop
	AnchorCenter
	AnchorBottom
)

// ScrollAnchor is a one-shot placement for the next block transition.
type ScrollAnchor struct {
	Edge    AnchorEdge
	Animate bool
}

// ScrollSynchronizer keeps the caret visible in the outer viewport and resets
// the internal scroll of surfaces that are not being edited.
type ScrollSynchronizer struct {
	e *Engine

	// Typewriter pins the caret line at Config.TypewriterFraction.
	Typewriter bool

	anchor        ScrollAnchor
	lastNormalize time.Time
	heights       map[string]int
}

// SetAnchor arms an anchor for the next EnsureVisible.
func (s *ScrollSynchronizer) SetAnchor(a ScrollAnchor) { s.anchor = a }

// consumeAnchor returns the armed anchor and resets it to the default.
func (s *ScrollSynchronizer) consumeAnchor() ScrollAnchor {
	a := s.anchor
	s.anchor = ScrollAnchor{}
	return a
}

// caretRect returns the caret rectangle of the focused surface in the outer
// container's content coordinates.
func (s *ScrollSynchronizer) caretRect() (Rect, bool) {
	e := s.e
	surf := e.host.CurrentFocusedSurface()
	if surf == nil {
		return Rect{}, false
	}
	editing := e.state.EditingBlockID
	if editing == "" || e.Responders.isStale(surf, editing) {
		return Rect{}, false
	}
	if _, known := e.Responders.BlockFor(surf); !known && e.host.SurfaceFor(editing) != surf {
		return Rect{}, false
	}
	local := surf.CaretRect(surf.Caret())
	frame := surf.Frame()
	h := local.H
	if h <= 0 {
		h = 1
	}
	return Rect{
		X: frame.X + local.X,
		Y: frame.Y + local.Y - surf.ScrollOrigin(),
		W: local.W,
		H: h,
	}, true
}

// EnsureVisible scrolls the outer viewport so the caret is visible. It reports
// whether a scroll was issued.
func (s *ScrollSynchronizer) EnsureVisible(typewriter bool) bool {
	e := s.e
	if !e.on {
		return false
	}
	vp := e.host.Viewport()
	if vp == nil {
		return false
	}
	rect, ok := s.caretRect()
	if !ok {
		return false
	}
	vis := vp.VisibleRect()
	anchor := s.consumeAnchor()
	pad := e.cfg.ScrollPadding
	if limit := vis.H / 3; pad > limit {
		pad = limit
	}

	var target int
	switch {
	case anchor.Edge == AnchorTop:
		target = rect.Y - pad
	case anchor.Edge == AnchorBottom:
		target = rect.MaxY() + pad - vis.H
	case anchor.Edge == AnchorCenter:
		target = rect.Y + rect.H/2 - vis.H/2
	case typewriter:
		line := int(math.Round(e.cfg.TypewriterFraction * float64(vis.H)))
		target = rect.Y - line
		if abs(target-vis.Y) <= e.cfg.TypewriterDeadZone {
			return false
		}
	default:
		switch {
		case rect.Y < vis.Y+pad:
			target = rect.Y - pad
		case rect.MaxY() > vis.MaxY()-pad:
			target = rect.MaxY() + pad - vis.H
		default:
			return false
		}
	}

	target = clampScroll(target, vp.ContentHeight(), vis.H)
	if target == vis.Y {
		return false
	}
	vp.ScrollTo(target, anchor.Animate)
	return true
}

// NormalizeInactiveOffsets zeroes the internal scroll origin of every surface
// except the focused one (unless includeActive). Work is skipped when called
// again within Config.NormalizeInterval, unless force. Reports whether a pass
// ran.
func (s *ScrollSynchronizer) NormalizeInactiveOffsets(includeActive, force bool) bool {
	e := s.e
	now := e.clock.Now()
	if !force && !s.lastNormalize.IsZero() && now.Sub(s.lastNormalize) < e.cfg.NormalizeInterval {
		return false
	}
	s.lastNormalize = now

	focused := e.host.CurrentFocusedSurface()
	var vis Rect
	hasVP := false
	if vp := e.host.Viewport(); vp != nil {
		vis = vp.VisibleRect()
		hasVP = true
	}
	for _, bs := range e.host.Surfaces() {
		if bs.Surface == nil {
			continue
		}
		if includeActive || bs.Surface != focused {
			if bs.Surface.ScrollOrigin() != 0 {
				bs.Surface.SetScrollOrigin(0)
			}
		}
		if bs.BlockID == "" {
			continue
		}
		if !hasVP || intersects(bs.Surface.Frame(), vis) {
			s.heights[bs.BlockID] = bs.Surface.ContentHeight()
		}
	}
	s.pruneHeights()
	return true
}

// pruneHeights drops measurements for blocks outside the focused column.
func (s *ScrollSynchronizer) pruneHeights() {
	e := s.e
	active := e.state.ActiveBlockID
	if active == "" {
		return
	}
	_, _, ids := e.columnOf(active)
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	for id := range s.heights {
		if !keep[id] {
			delete(s.heights, id)
		}
	}
}

// MeasuredHeight returns the last recorded rendered height of blockID.
func (s *ScrollSynchronizer) MeasuredHeight(blockID string) (int, bool) {
	h, ok := s.heights[blockID]
	return h, ok
}

func (s *ScrollSynchronizer) reset() {
	s.anchor = ScrollAnchor{}
	s.lastNormalize = time.Time{}
	s.heights = map[string]int{}
}

func clampScroll(y, contentH, viewH int) int {
	top := contentH - viewH
	if top < 0 {
		top = 0
	}
	if y > top {
		y = top
	}
	if y < 0 {
		y = 0
	}
	return y
}

func intersects(a, b Rect) bool {
	return a.Y < b.MaxY() && b.Y < a.MaxY()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
