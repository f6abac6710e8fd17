package tui

import (
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func TestRepeatDetector(t *testing.T) {
	r := repeatDetector{threshold: 35 * time.Millisecond}
	t0 := time.Unix(1000, 0)

	if r.observe("down", t0) {
		t.Fatalf("expected the first press not to repeat")
	}
	if !r.observe("down", t0.Add(20*time.Millisecond)) {
		t.Fatalf("expected a fast identical key to repeat")
	}
	if r.observe("down", t0.Add(80*time.Millisecond)) {
		t.Fatalf("expected a slow identical key not to repeat")
	}
	if r.observe("up", t0.Add(90*time.Millisecond)) {
		t.Fatalf("expected a different key not to repeat")
	}
}

func TestKeyMap_FocusBindings(t *testing.T) {
	k := newKeyMap()
	cases := []struct {
		name string
		msg  tea.KeyMsg
		b    key.Binding
	}{
		{"delete", tea.KeyMsg{Type: tea.KeyBackspace, Alt: true}, k.Delete},
		{"insert above", tea.KeyMsg{Type: tea.KeyUp, Alt: true}, k.InsertAbove},
		{"insert below", tea.KeyMsg{Type: tea.KeyDown, Alt: true}, k.InsertBelow},
		{"return", tea.KeyMsg{Type: tea.KeyEnter}, k.Return},
		{"toggle", tea.KeyMsg{Type: tea.KeyEsc}, k.ToggleFocus},
		{"typewriter", tea.KeyMsg{Type: tea.KeyCtrlT}, k.Typewriter},
	}
	for _, tc := range cases {
		if !key.Matches(tc.msg, tc.b) {
			t.Fatalf("%s: expected %q to match", tc.name, tc.msg.String())
		}
	}
	if key.Matches(tea.KeyMsg{Type: tea.KeyUp, Alt: true}, k.PrevLine) {
		t.Fatalf("expected alt+up not to move the caret")
	}
}
