package focus

// CaretRequest asks for the caret of TargetBlockID's surface to be placed at
// TargetOffset. Only the request whose Token equals the engine's current token
// is authoritative.
type CaretRequest struct {
	Token            uint64
	TargetBlockID    string
	TargetOffset     int
	RetriesRemaining int

	placement CaretPlacement
}

// CaretStats counts scheduler outcomes, for debugging.
type CaretStats struct {
	Applied   int
	Retried   int
	Dropped   int
	Exhausted int
}

// CaretScheduler drives a caret request onto the live surface, retrying until
// the surface identity and content line up.
type CaretScheduler struct {
	e     *Engine
	stats CaretStats

	// pending is the last scheduled request until it lands or is abandoned.
	pending *CaretRequest
}

type caretTask struct {
	req      CaretRequest
	followUp bool
	// editSeq is the engine edit sequence when a follow-up was scheduled.
	editSeq uint64
}

// Schedule runs the first attempt immediately; later attempts are deferred.
func (c *CaretScheduler) Schedule(req CaretRequest) {
	p := req
	c.pending = &p
	c.run(&caretTask{req: req})
}

// Pending returns the authoritative request while it has not landed yet.
func (c *CaretScheduler) Pending() (CaretRequest, bool) {
	if c.pending == nil || c.pending.Token != c.e.token {
		return CaretRequest{}, false
	}
	return *c.pending, true
}

// intended is where the pending request for blockID will put the caret on s,
// or s's own caret when no request is outstanding for that block.
func (c *CaretScheduler) intended(s Surface, blockID string) int {
	req, ok := c.Pending()
	if !ok || req.TargetBlockID != blockID {
		return s.Caret()
	}
	return c.resolve(req, s, s.Text())
}

func (c *CaretScheduler) settle(token uint64) {
	if c.pending != nil && c.pending.Token == token {
		c.pending = nil
	}
}

func (c *CaretScheduler) Stats() CaretStats { return c.stats }

// Cancel invalidates every in-flight request and follow-up. Hosts call it when
// the user moved the caret inside the active block.
func (c *CaretScheduler) Cancel() { c.e.nextToken() }

func (c *CaretScheduler) run(t *caretTask) {
	e := c.e
	if !e.on || t.req.Token != e.token {
		c.stats.Dropped++
		return
	}
	if t.followUp && t.editSeq != e.editSeq {
		// The user typed since; the caret is theirs now.
		c.stats.Dropped++
		return
	}

	id := t.req.TargetBlockID
	target := e.host.SurfaceFor(id)
	if reason := c.mismatch(target, id); reason != "" {
		c.retry(t, reason)
		return
	}
	if e.host.CurrentFocusedSurface() != target {
		e.host.RequestFocus(target)
		if e.host.CurrentFocusedSurface() != target {
			c.retry(t, "focus pending")
			return
		}
	}

	text := target.Text()
	offset := c.resolve(t.req, target, text)
	if target.Caret() != offset {
		target.SetCaret(offset)
	}
	e.Responders.Remember(target, id)
	e.clearExclusion()
	e.state.EditingSurfaceBlockID = id
	c.settle(t.req.Token)
	c.stats.Applied++
	e.listener.CaretEnsured(id, offset)
	e.Scroll.EnsureVisible(e.Scroll.Typewriter)

	if t.followUp {
		return
	}
	follow := t.req
	follow.TargetOffset = offset
	follow.placement = CaretAt
	follow.RetriesRemaining = 0
	for _, d := range e.cfg.CaretFollowUps {
		ft := &caretTask{req: follow, followUp: true, editSeq: e.editSeq}
		e.sched.After(d, func() { c.run(ft) })
	}
}

// mismatch returns why target cannot take the caret yet, or "" when it can.
func (c *CaretScheduler) mismatch(target Surface, blockID string) string {
	e := c.e
	if target == nil {
		return "no surface"
	}
	if e.excluded(target) {
		return "excluded"
	}
	if target.Text() != e.LiveContent(blockID) {
		if e.Responders.isStale(target, blockID) {
			return "stale handle"
		}
		return "content mismatch"
	}
	return ""
}

func (c *CaretScheduler) resolve(req CaretRequest, target Surface, text string) int {
	switch req.placement {
	case CaretStart:
		return 0
	case CaretEnd:
		return UTF16Len(text)
	case CaretKeep:
		return ClampOffset(text, target.Caret())
	default:
		return ClampOffset(text, req.TargetOffset)
	}
}

func (c *CaretScheduler) retry(t *caretTask, reason string) {
	e := c.e
	if t.req.RetriesRemaining <= 0 {
		c.stats.Exhausted++
		c.settle(t.req.Token)
		e.logf("caret abandoned block=%s token=%d reason=%s", t.req.TargetBlockID, t.req.Token, reason)
		return
	}
	t.req.RetriesRemaining--
	c.stats.Retried++
	e.sched.After(e.cfg.CaretRetryDelay, func() { c.run(t) })
}
