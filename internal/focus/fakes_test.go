package focus

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cardwrite/internal/model"
)

// manualLoop is a virtual-time event loop: tasks only run inside advance.
type manualLoop struct {
	now   time.Time
	seq   int
	tasks []loopTask
}

type loopTask struct {
	at  time.Time
	seq int
	fn  func()
}

func newManualLoop() *manualLoop {
	return &manualLoop{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (l *manualLoop) Now() time.Time { return l.now }

func (l *manualLoop) After(d time.Duration, fn func()) {
	l.seq++
	l.tasks = append(l.tasks, loopTask{at: l.now.Add(d), seq: l.seq, fn: fn})
}

func (l *manualLoop) advance(d time.Duration) {
	end := l.now.Add(d)
	for {
		sort.SliceStable(l.tasks, func(i, j int) bool {
			if l.tasks[i].at.Equal(l.tasks[j].at) {
				return l.tasks[i].seq < l.tasks[j].seq
			}
			return l.tasks[i].at.Before(l.tasks[j].at)
		})
		if len(l.tasks) == 0 || l.tasks[0].at.After(end) {
			break
		}
		t := l.tasks[0]
		l.tasks = l.tasks[1:]
		l.now = t.at
		t.fn()
	}
	l.now = end
}

func (l *manualLoop) pending() int { return len(l.tasks) }

// fakeSurface wraps text at width runes per visual line.
type fakeSurface struct {
	name   string
	text   string
	caret  int
	marked bool
	frame  Rect
	width  int
	scroll int

	caretSets int
}

func (s *fakeSurface) Text() string        { return s.text }
func (s *fakeSurface) Caret() int          { return s.caret }
func (s *fakeSurface) HasMarkedText() bool { return s.marked }
func (s *fakeSurface) Frame() Rect         { return s.frame }
func (s *fakeSurface) ScrollOrigin() int   { return s.scroll }
func (s *fakeSurface) SetScrollOrigin(y int) {
	s.scroll = y
}

func (s *fakeSurface) SetCaret(offset int) {
	s.caret = ClampOffset(s.text, offset)
	s.caretSets++
}

func (s *fakeSurface) rows() [][2]int {
	w := s.width
	if w <= 0 {
		w = 1 << 30
	}
	var rows [][2]int // [startRune, endRune)
	start := 0
	for _, line := range strings.Split(s.text, "\n") {
		n := len([]rune(line))
		if n == 0 {
			rows = append(rows, [2]int{start, start})
		}
		for off := 0; off < n; off += w {
			end := off + w
			if end > n {
				end = n
			}
			rows = append(rows, [2]int{start + off, start + end})
		}
		start += n + 1
	}
	return rows
}

func (s *fakeSurface) VisualLine(offset int) (int, int) {
	ri := RuneIndex(s.text, offset)
	rows := s.rows()
	for i, r := range rows {
		if ri >= r[0] && ri < r[1] {
			return i, len(rows)
		}
		if ri == r[1] && (i == len(rows)-1 || rows[i+1][0] > ri) {
			return i, len(rows)
		}
	}
	return len(rows) - 1, len(rows)
}

func (s *fakeSurface) CaretRect(offset int) Rect {
	line, _ := s.VisualLine(offset)
	return Rect{X: 0, Y: line, W: 1, H: 1}
}

func (s *fakeSurface) ContentHeight() int { return len(s.rows()) }

type fakeViewport struct {
	y, h, contentH int
	scrolls        []int
	animated       []bool
}

func (v *fakeViewport) VisibleRect() Rect  { return Rect{Y: v.y, H: v.h, W: 80} }
func (v *fakeViewport) ContentHeight() int { return v.contentH }
func (v *fakeViewport) ScrollTo(y int, animate bool) {
	v.y = y
	v.scrolls = append(v.scrolls, y)
	v.animated = append(v.animated, animate)
}

// fakeHost models a toolkit whose focus handoff can be delayed or refused.
type fakeHost struct {
	loop     *manualLoop
	doc      *memDoc
	surfaces map[string]*fakeSurface
	focused  *fakeSurface
	vp       *fakeViewport

	// focusDelay > 0 applies RequestFocus after that delay.
	focusDelay time.Duration
	// refuseFocus drops every RequestFocus.
	refuseFocus bool

	requests int
	restored int
}

func newFakeHost(loop *manualLoop, doc *memDoc) *fakeHost {
	h := &fakeHost{
		loop:     loop,
		doc:      doc,
		surfaces: map[string]*fakeSurface{},
		vp:       &fakeViewport{h: 20, contentH: 200},
	}
	y := 0
	for _, b := range doc.blocks {
		s := &fakeSurface{name: b.ID, text: b.Content, width: 40}
		s.frame = Rect{Y: y, W: 40, H: s.ContentHeight()}
		y += s.ContentHeight() + 1
		h.surfaces[b.ID] = s
	}
	return h
}

func (h *fakeHost) CurrentFocusedSurface() Surface {
	if h.focused == nil {
		return nil
	}
	return h.focused
}

func (h *fakeHost) RequestFocus(s Surface) bool {
	h.requests++
	fs, ok := s.(*fakeSurface)
	if !ok || h.refuseFocus {
		return false
	}
	if h.focusDelay > 0 {
		h.loop.After(h.focusDelay, func() {
			if !h.refuseFocus {
				h.focused = fs
			}
		})
		return true
	}
	h.focused = fs
	return true
}

func (h *fakeHost) SurfaceFor(blockID string) Surface {
	s, ok := h.surfaces[blockID]
	if !ok {
		return nil
	}
	return s
}

func (h *fakeHost) Surfaces() []BoundSurface {
	out := make([]BoundSurface, 0, len(h.surfaces))
	for _, b := range h.doc.blocks {
		if s, ok := h.surfaces[b.ID]; ok {
			out = append(out, BoundSurface{BlockID: b.ID, Surface: s})
		}
	}
	return out
}

func (h *fakeHost) Viewport() Viewport { return h.vp }

func (h *fakeHost) RestoreFocus() {
	h.restored++
	h.focused = nil
}

// typeText mutates the surface for blockID and reports the change like a
// toolkit text-change callback would.
func (h *fakeHost) typeText(e *Engine, blockID, newValue string) {
	s := h.surfaces[blockID]
	old := s.text
	s.text = newValue
	s.caret = ClampOffset(newValue, s.caret)
	e.Typing.OnContentChange(blockID, old, newValue)
}

// memDoc is a single-column document.
type memDoc struct {
	blocks []model.Block
	nextID int
}

func newMemDoc(contents ...string) *memDoc {
	d := &memDoc{}
	for i, c := range contents {
		d.blocks = append(d.blocks, model.Block{ID: string(rune('A' + i)), Content: c})
	}
	return d
}

func (d *memDoc) ColumnsWithParents() []model.Column {
	bs := append([]model.Block(nil), d.blocks...)
	return []model.Column{{Index: 0, Groups: []model.ParentGroup{{Blocks: bs}}}}
}

func (d *memDoc) FindBlock(id string) (model.Block, bool) {
	for _, b := range d.blocks {
		if b.ID == id {
			return b, true
		}
	}
	return model.Block{}, false
}

func (d *memDoc) RootBlocks() []model.Block { return append([]model.Block(nil), d.blocks...) }

func (d *memDoc) UpdateContent(id, content string) bool {
	for i := range d.blocks {
		if d.blocks[i].ID == id {
			d.blocks[i].Content = content
			return true
		}
	}
	return false
}

func (d *memDoc) InsertSibling(id string, above bool) (model.Block, error) {
	for i := range d.blocks {
		if d.blocks[i].ID != id {
			continue
		}
		d.nextID++
		b := model.Block{ID: fmt.Sprintf("N%d", d.nextID)}
		at := i + 1
		if above {
			at = i
		}
		d.blocks = append(d.blocks[:at], append([]model.Block{b}, d.blocks[at:]...)...)
		return b, nil
	}
	return model.Block{}, errors.New("not found")
}

func (d *memDoc) Delete(id string) error {
	for i := range d.blocks {
		if d.blocks[i].ID == id {
			d.blocks = append(d.blocks[:i], d.blocks[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

type fakePersist struct {
	doc       *memDoc
	saves     int
	snapshots int
	saveErr   error
	// lastSaved is the document content at the most recent SaveAll.
	lastSaved map[string]string
}

func (p *fakePersist) SaveAll() error {
	p.saves++
	p.lastSaved = map[string]string{}
	for _, b := range p.doc.blocks {
		p.lastSaved[b.ID] = b.Content
	}
	return p.saveErr
}

func (p *fakePersist) TakeSnapshot() error {
	p.snapshots++
	return nil
}

func (p *fakePersist) CaptureState(overrides map[string]string) model.Snapshot {
	blocks := map[string]string{}
	for _, b := range p.doc.blocks {
		blocks[b.ID] = b.Content
	}
	for id, c := range overrides {
		blocks[id] = c
	}
	return model.Snapshot{Blocks: blocks}
}

type recordingListener struct {
	NopListener
	active    []string
	editing   []string
	modes     []bool
	ensured   []int
	finalized []FinalizeEvent
}

func (l *recordingListener) ActiveChanged(id string)         { l.active = append(l.active, id) }
func (l *recordingListener) EditingChanged(id string)        { l.editing = append(l.editing, id) }
func (l *recordingListener) FocusModeChanged(on bool)        { l.modes = append(l.modes, on) }
func (l *recordingListener) CaretEnsured(_ string, off int)  { l.ensured = append(l.ensured, off) }
func (l *recordingListener) BatchFinalized(ev FinalizeEvent) { l.finalized = append(l.finalized, ev) }

type harness struct {
	loop    *manualLoop
	doc     *memDoc
	host    *fakeHost
	persist *fakePersist
	lis     *recordingListener
	e       *Engine
}

func newHarness(cfg Config, contents ...string) *harness {
	loop := newManualLoop()
	doc := newMemDoc(contents...)
	host := newFakeHost(loop, doc)
	p := &fakePersist{doc: doc}
	lis := &recordingListener{}
	e := New(doc, p, host, loop, WithConfig(cfg), WithClock(loop), WithListener(lis))
	return &harness{loop: loop, doc: doc, host: host, persist: p, lis: lis, e: e}
}

// enterAt enters focus mode on blockID with the caret at offset.
func (h *harness) enterAt(blockID string, offset int) {
	h.e.Navigator.SetCaretHint(CaretHint{BlockID: blockID, Offset: offset})
	h.e.Navigator.ToggleFocusMode()
}

func (h *harness) surface(id string) *fakeSurface { return h.host.surfaces[id] }

func (h *harness) docContent(id string) string {
	b, _ := h.doc.FindBlock(id)
	return b.Content
}
