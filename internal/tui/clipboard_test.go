package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func stubClipboard(t *testing.T, err error) *[]string {
	t.Helper()
	var got []string
	prev := writeClipboard
	writeClipboard = func(s string) error {
		got = append(got, s)
		return err
	}
	t.Cleanup(func() { writeClipboard = prev })
	return &got
}

func TestApp_CopyCard(t *testing.T) {
	got := stubClipboard(t, nil)
	h := newHarness(t, seedStore(t))

	h.typeText("y")
	if len(*got) != 1 || (*got)[0] != "alpha" {
		t.Fatalf("expected the selected card copied, got %q", *got)
	}
	if h.m.ui.status != "copied card" {
		t.Fatalf("unexpected status %q", h.m.ui.status)
	}

	h.enterFocus()
	h.typeText("!")
	h.key(tea.KeyCtrlY)
	if len(*got) != 2 || (*got)[1] != "alpha!" {
		t.Fatalf("expected the live text copied, got %q", *got)
	}
	if got := h.m.ctl.engine.LiveContent("a"); got != "alpha!" {
		t.Fatalf("expected copying to leave the card alone, got %q", got)
	}
}

func TestApp_CopyCardReportsFailure(t *testing.T) {
	stubClipboard(t, errors.New("no clipboard"))
	h := newHarness(t, seedStore(t))

	h.typeText("y")
	if !h.m.ui.statusErr || h.m.ui.status != "copy failed: no clipboard" {
		t.Fatalf("unexpected status %q err=%v", h.m.ui.status, h.m.ui.statusErr)
	}
}
