package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Quit        key.Binding
	ToggleFocus key.Binding
	Save        key.Binding
	Typewriter  key.Binding
	Undo        key.Binding
	Copy        key.Binding

	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Open  key.Binding
	New   key.Binding
	Child key.Binding
	Yank  key.Binding

	// Focus mode bindings. Letters belong to the editor there.
	PrevLine    key.Binding
	NextLine    key.Binding
	Return      key.Binding
	Delete      key.Binding
	InsertAbove key.Binding
	InsertBelow key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:        key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		ToggleFocus: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "focus mode")),
		Save:        key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Typewriter:  key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "typewriter")),
		Undo:        key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "undo")),
		Copy:        key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy card")),

		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "parent column")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "child column")),
		Open:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "write")),
		New:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new card")),
		Child: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "new child")),
		Yank:  key.NewBinding(key.WithKeys("y", "ctrl+y"), key.WithHelp("y", "copy card")),

		PrevLine:    key.NewBinding(key.WithKeys("up")),
		NextLine:    key.NewBinding(key.WithKeys("down")),
		Return:      key.NewBinding(key.WithKeys("enter")),
		Delete:      key.NewBinding(key.WithKeys("alt+backspace", "alt+delete"), key.WithHelp("alt+⌫", "delete card")),
		InsertAbove: key.NewBinding(key.WithKeys("alt+up"), key.WithHelp("alt+↑", "new card above")),
		InsertBelow: key.NewBinding(key.WithKeys("alt+down", "alt+enter"), key.WithHelp("alt+↓", "new card below")),
	}
}

// repeatDetector infers key auto-repeat from the gap between identical key
// events, since terminals do not flag repeats.
type repeatDetector struct {
	threshold time.Duration
	lastKey   string
	lastAt    time.Time
}

func (r *repeatDetector) observe(k string, now time.Time) bool {
	repeat := k == r.lastKey && !r.lastAt.IsZero() && now.Sub(r.lastAt) < r.threshold
	r.lastKey = k
	r.lastAt = now
	return repeat
}
