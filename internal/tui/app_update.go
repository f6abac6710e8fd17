package tui

import (
	"cardwrite/internal/focus"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case deferredTaskMsg:
		m.ctl.sched.run(msg.id)

	case reloadTickMsg:
		m.reloadConfig()
		if m.ctl.engine.InFocusMode() {
			m.ctl.engine.Scroll.NormalizeInactiveOffsets(false, false)
		}
		return m, tea.Batch(tickReload(), m.ctl.sched.drain())

	case tea.MouseMsg:
		if m.ctl.engine.InFocusMode() {
			m.updateFocusMouse(msg)
		}

	case tea.KeyMsg:
		m.log.debugLogf("key str=%q type=%v alt=%v", msg.String(), msg.Type, msg.Alt)
		if key.Matches(msg, m.keys.Quit) {
			m.saveFocusState()
			m.ctl.engine.Navigator.Exit()
			return m, tea.Quit
		}
		if m.ctl.engine.InFocusMode() {
			cmd = m.updateFocusKey(msg)
		} else {
			m.updateOverviewKey(msg)
		}
	}
	return m, tea.Batch(cmd, m.ctl.sched.drain())
}

func (m appModel) updateFocusKey(msg tea.KeyMsg) tea.Cmd {
	c := m.ctl
	e := c.engine
	switch {
	case key.Matches(msg, m.keys.ToggleFocus):
		e.Navigator.ToggleFocusMode()
	case key.Matches(msg, m.keys.Save):
		if err := c.save(); err != nil {
			m.setStatus("save failed: "+err.Error(), true)
		} else {
			m.setStatus("saved", false)
		}
	case key.Matches(msg, m.keys.Typewriter):
		e.Scroll.Typewriter = !e.Scroll.Typewriter
		e.Scroll.EnsureVisible(e.Scroll.Typewriter)
	case key.Matches(msg, m.keys.Undo):
		if !c.undoLast() {
			m.setStatus("nothing to undo", false)
		}
	case key.Matches(msg, m.keys.Copy):
		m.copyCard(e.State().ActiveBlockID)
	case key.Matches(msg, m.keys.Delete):
		e.Navigator.DeleteActive(m.rep.observe(msg.String(), m.now()))
	case key.Matches(msg, m.keys.InsertAbove):
		e.Navigator.InsertSibling(true)
	case key.Matches(msg, m.keys.InsertBelow):
		e.Navigator.InsertSibling(false)
	case key.Matches(msg, m.keys.PrevLine):
		c.navigate(focus.Up, m.rep.observe(msg.String(), m.now()))
	case key.Matches(msg, m.keys.NextLine):
		c.navigate(focus.Down, m.rep.observe(msg.String(), m.now()))
	case key.Matches(msg, m.keys.Return):
		e.Navigator.OnReturnKey()
		return c.edit(msg)
	default:
		return c.edit(msg)
	}
	return nil
}

func (m appModel) updateFocusMouse(msg tea.MouseMsg) {
	c := m.ctl
	top, x0 := m.focusTop(), m.panelX()
	inside := msg.Y >= top && msg.Y < top+c.vp.Height && msg.X >= x0 && msg.X < x0+m.panelWidth()
	y := msg.Y - top + c.vp.YOffset

	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		delta := 1
		if msg.Button == tea.MouseButtonWheelUp {
			delta = -1
		}
		if inside && c.scrollCard(y, delta) {
			return
		}
		c.scrollView(3 * delta)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return
		}
		if !inside {
			c.engine.Navigator.Exit()
			return
		}
		c.click(msg.X-x0-panelGutter, y)
	}
}

func (m appModel) updateOverviewKey(msg tea.KeyMsg) {
	c := m.ctl
	switch {
	case key.Matches(msg, m.keys.ToggleFocus), key.Matches(msg, m.keys.Open):
		m.openFocus(m.ui.selectedID)
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Left):
		if b, ok := c.doc.FindBlock(m.ui.selectedID); ok && b.Parent() != "" {
			m.ui.selectedID = b.Parent()
		}
	case key.Matches(msg, m.keys.Right):
		if kids := c.doc.Children(m.ui.selectedID); len(kids) > 0 {
			m.ui.selectedID = kids[0].ID
		}
	case key.Matches(msg, m.keys.New):
		m.createCard(false)
	case key.Matches(msg, m.keys.Child):
		m.createCard(true)
	case key.Matches(msg, m.keys.Yank):
		m.copyCard(m.ui.selectedID)
	}
}

// openFocus enters focus mode on blockID, restoring its last caret if any.
func (m appModel) openFocus(blockID string) {
	e := m.ctl.engine
	if blockID != "" {
		e.Navigator.SetCaretHint(focus.CaretHint{BlockID: blockID, Offset: -1})
	}
	e.Navigator.ToggleFocusMode()
	if !e.InFocusMode() {
		m.setStatus("no cards yet: press n to add one", false)
		return
	}
	m.setStatus("", false)
}

// moveSelection moves the overview selection within its column.
func (m appModel) moveSelection(delta int) {
	_, ids := m.ctl.columnIDs(m.ui.selectedID)
	for i, id := range ids {
		if id != m.ui.selectedID {
			continue
		}
		if j := i + delta; j >= 0 && j < len(ids) {
			m.ui.selectedID = ids[j]
		}
		return
	}
}

// createCard adds a card below the selection (or as its first child) and
// starts writing in it.
func (m appModel) createCard(child bool) {
	c := m.ctl
	var (
		id  string
		err error
	)
	switch sel := m.ui.selectedID; {
	case child && sel != "":
		b, e := c.doc.AddBlock(sel, "")
		id, err = b.ID, e
	case sel != "":
		b, e := c.doc.InsertSibling(sel, false)
		id, err = b.ID, e
	default:
		b, e := c.doc.AddBlock("", "")
		id, err = b.ID, e
	}
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	if err := c.session.SaveAll(); err != nil {
		m.setStatus("save failed: "+err.Error(), true)
	}
	m.ui.selectedID = id
	m.openFocus(id)
}
