package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const focusStateFileName = "focus_state.json"

// FocusState remembers where the writer was, so a relaunch returns there.
//
// The file lives in the document directory. It is best effort: callers
// tolerate missing or invalid data.
type FocusState struct {
	Version int `json:"version"`

	// FocusMode reports whether focus mode was on at exit.
	FocusMode bool `json:"focusMode,omitempty"`
	// ActiveCardID is the last active card.
	ActiveCardID string `json:"activeCardId,omitempty"`
	// CaretOffset is a UTF-16 offset into ActiveCardID's content.
	CaretOffset int `json:"caretOffset,omitempty"`
	// Typewriter is the typewriter scrolling toggle at exit.
	Typewriter bool `json:"typewriter,omitempty"`
}

func (s Store) focusStatePath() string {
	return filepath.Join(s.Dir, focusStateFileName)
}

func (s Store) LoadFocusState() (*FocusState, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return &FocusState{Version: 1}, nil
	}
	b, err := os.ReadFile(s.focusStatePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &FocusState{Version: 1}, nil
		}
		return nil, err
	}
	var st FocusState
	if err := json.Unmarshal(b, &st); err != nil {
		// Corrupt state is treated as missing.
		return &FocusState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	if st.CaretOffset < 0 {
		st.CaretOffset = 0
	}
	return &st, nil
}

func (s Store) SaveFocusState(st *FocusState) error {
	if st == nil || strings.TrimSpace(s.Dir) == "" {
		return nil
	}
	if err := s.Ensure(); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return writeJSONFile(s.focusStatePath(), st, 0o644)
}
