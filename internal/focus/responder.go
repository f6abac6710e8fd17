package focus

// ResponderTracker maps surfaces to the block they last displayed. It holds no
// policy; callers decide what a mismatch means.
type ResponderTracker struct {
	byHandle map[Surface]string
}

func NewResponderTracker() *ResponderTracker {
	return &ResponderTracker{byHandle: map[Surface]string{}}
}

func (t *ResponderTracker) Remember(s Surface, blockID string) {
	if s == nil || blockID == "" {
		return
	}
	t.byHandle[s] = blockID
}

func (t *ResponderTracker) BlockFor(s Surface) (string, bool) {
	if s == nil {
		return "", false
	}
	id, ok := t.byHandle[s]
	return id, ok
}

func (t *ResponderTracker) Forget(s Surface) {
	delete(t.byHandle, s)
}

// forgetBlock drops every handle bound to blockID.
func (t *ResponderTracker) forgetBlock(blockID string) {
	for s, id := range t.byHandle {
		if id == blockID {
			delete(t.byHandle, s)
		}
	}
}

func (t *ResponderTracker) Clear() {
	t.byHandle = map[Surface]string{}
}

func (t *ResponderTracker) Len() int { return len(t.byHandle) }

// isStale reports whether s is known to display a block other than blockID.
func (t *ResponderTracker) isStale(s Surface, blockID string) bool {
	id, ok := t.BlockFor(s)
	return ok && id != blockID
}
