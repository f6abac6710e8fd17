package tui

import (
	"time"

	"cardwrite/internal/focus"
	"cardwrite/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	// previewRows caps the rows an inactive card shows.
	previewRows    = 6
	maxPanelWidth  = 80
	reloadInterval = 750 * time.Millisecond
	// panelGutter is the active-card marker column plus its padding.
	panelGutter = 2
)

type reloadTickMsg struct{}

// uiState is the part of the model that engine callbacks mutate.
type uiState struct {
	selectedID string
	status     string
	statusErr  bool
	configMod  time.Time
	showDebug  bool
}

type appModel struct {
	store store.Store
	cfg   *store.GlobalConfig
	ctl   *controller
	keys  keyMap
	rep   *repeatDetector
	ui    *uiState
	log   *debugLog
	now   func() time.Time

	width  int
	height int
}

func newAppModel(s store.Store, sess *store.Session, cfg *store.GlobalConfig, opts ...focus.Option) appModel {
	if cfg == nil {
		cfg = &store.GlobalConfig{}
	}
	log := newDebugLog()
	engineCfg := cfg.EngineConfig()
	m := appModel{
		store: s,
		cfg:   cfg,
		keys:  newKeyMap(),
		rep:   &repeatDetector{threshold: engineCfg.RepeatThreshold},
		ui:    &uiState{showDebug: debugOverlayEnabled()},
		log:   log,
		now:   time.Now,
	}
	m.ctl = newController(sess, engineCfg, log, opts...)
	m.ctl.engine.Scroll.Typewriter = cfg.TUI != nil && cfg.TUI.Typewriter
	ui, nav := m.ui, m.ctl.engine.Navigator
	m.ctl.onFocusMode = func(on bool) {
		if !on {
			if id := nav.LastActive(); id != "" {
				ui.selectedID = id
			}
		}
	}
	m.ctl.onNotice = func(s string) {
		ui.status = s
		ui.statusErr = false
	}
	if mt, err := store.ConfigModTime(); err == nil {
		m.ui.configMod = mt
	}
	if roots := m.ctl.doc.RootBlocks(); len(roots) > 0 {
		m.ui.selectedID = roots[0].ID
	}
	m.restoreFocusState()
	return m
}

// restoreFocusState reopens the card (and caret) the last session ended on.
func (m appModel) restoreFocusState() {
	st, err := m.store.LoadFocusState()
	if err != nil {
		m.log.debugLogf("focus state unreadable err=%v", err)
		return
	}
	if st.Typewriter {
		m.ctl.engine.Scroll.Typewriter = true
	}
	if _, ok := m.ctl.doc.FindBlock(st.ActiveCardID); !ok {
		return
	}
	m.ui.selectedID = st.ActiveCardID
	if st.FocusMode {
		m.ctl.engine.Navigator.SetCaretHint(focus.CaretHint{BlockID: st.ActiveCardID, Offset: st.CaretOffset})
		m.ctl.engine.Navigator.ToggleFocusMode()
	}
}

// saveFocusState records where the writer is, before focus mode is left.
func (m appModel) saveFocusState() {
	e := m.ctl.engine
	st := &store.FocusState{
		FocusMode:    e.InFocusMode(),
		ActiveCardID: m.ui.selectedID,
		Typewriter:   e.Scroll.Typewriter,
	}
	if e.InFocusMode() {
		st.ActiveCardID = e.State().ActiveBlockID
		if s := m.ctl.editingSlot(); s != nil {
			st.CaretOffset = s.Caret()
		}
	}
	if err := m.store.SaveFocusState(st); err != nil {
		m.log.debugLogf("save focus state failed err=%v", err)
	}
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(tickReload(), m.ctl.sched.drain())
}

func tickReload() tea.Cmd {
	return tea.Tick(reloadInterval, func(time.Time) tea.Msg { return reloadTickMsg{} })
}

// reloadConfig applies config.json changes made while the TUI runs.
func (m appModel) reloadConfig() {
	mt, err := store.ConfigModTime()
	if err != nil || mt.Equal(m.ui.configMod) {
		return
	}
	m.ui.configMod = mt
	cfg, err := store.LoadConfig()
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	*m.cfg = *cfg
	ec := cfg.EngineConfig()
	m.ctl.engine.SetConfig(ec)
	m.rep.threshold = ec.RepeatThreshold
	m.log.debugLogf("config reloaded")
}

func (m appModel) setStatus(s string, isErr bool) {
	m.ui.status = s
	m.ui.statusErr = isErr
}

// panelWidth is the focus-mode column width including the marker gutter.
func (m appModel) panelWidth() int {
	w := m.width - 4
	if w > maxPanelWidth {
		w = maxPanelWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m appModel) panelX() int {
	x := (m.width - m.panelWidth()) / 2
	if x < 0 {
		return 0
	}
	return x
}

// focusTop is the screen row of the viewport's first line.
func (m appModel) focusTop() int { return 1 }

func (m *appModel) resize(w, h int) {
	m.width, m.height = w, h
	vpH := h - 2
	if m.ui.showDebug {
		vpH--
	}
	if vpH < 3 {
		vpH = 3
	}
	m.ctl.vp.Width = m.panelWidth()
	m.ctl.vp.Height = vpH
	m.ctl.host.stack.setWidth(m.panelWidth() - panelGutter)
	if m.ctl.engine.InFocusMode() {
		m.ctl.engine.Scroll.EnsureVisible(m.ctl.engine.Scroll.Typewriter)
	}
}
