package store

import (
	"context"
	"maps"
	"time"

	"cardwrite/internal/focus"
	"cardwrite/internal/model"
)

const saveTimeout = 5 * time.Second

var _ focus.Persistence = (*Session)(nil)

// Session persists one open document for the focus engine.
type Session struct {
	store Store
	doc   *Document
	now   func() time.Time

	// last is the content of the most recent snapshot; identical snapshots
	// are skipped.
	last map[string]string
}

func NewSession(s Store, doc *Document) *Session {
	return &Session{
		store: s,
		doc:   doc,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Session) Document() *Document { return s.doc }

func (s *Session) Store() Store { return s.store }

func (s *Session) SaveAll() error {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	return s.store.Save(ctx, s.doc)
}

func (s *Session) TakeSnapshot() error {
	snap := s.CaptureState(nil)
	if s.last != nil && maps.Equal(s.last, snap.Blocks) {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if _, err := s.store.AppendSnapshot(ctx, snap); err != nil {
		return err
	}
	s.last = snap.Blocks
	return nil
}

// CaptureState returns the current document contents with overrides applied.
func (s *Session) CaptureState(overrides map[string]string) model.Snapshot {
	blocks := s.doc.Contents()
	for id, c := range overrides {
		blocks[id] = c
	}
	return model.Snapshot{TakenAt: s.now(), Blocks: blocks}
}
