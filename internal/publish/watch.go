package publish

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"cardwrite/internal/store"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-exports a document whenever its file changes. Bursts of writes
// (a TUI save touches the journal several times) collapse into one export.
type Watcher struct {
	store    store.Store
	to       string
	opt      WriteOptions
	debounce time.Duration
	onExport func(WriteResult, error)

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	running bool
}

type WatcherOpts struct {
	Store    store.Store
	To       string
	Options  WriteOptions
	Debounce time.Duration
	// OnExport is called after every export attempt, from the timer goroutine.
	OnExport func(WriteResult, error)
}

func NewWatcher(opts WatcherOpts) *Watcher {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	opt := opts.Options
	opt.Overwrite = true
	return &Watcher{
		store:    opts.Store,
		to:       opts.To,
		opt:      opt,
		debounce: debounce,
		onExport: opts.OnExport,
	}
}

// Notify schedules an export after the debounce interval.
func (w *Watcher) Notify() {
	if w == nil {
		return
	}

	w.mu.Lock()
	w.pending = true
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.onTimer)
		w.mu.Unlock()
		return
	}
	w.timer.Reset(w.debounce)
	w.mu.Unlock()
}

func (w *Watcher) onTimer() {
	w.mu.Lock()
	if w.running {
		if w.timer != nil {
			w.timer.Reset(w.debounce)
		}
		w.mu.Unlock()
		return
	}
	if !w.pending {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.running = true
	w.mu.Unlock()

	res, err := w.Export(context.Background())
	if w.onExport != nil {
		w.onExport(res, err)
	}

	w.mu.Lock()
	w.running = false
	if w.pending && w.timer != nil {
		w.timer.Reset(w.debounce)
	}
	w.mu.Unlock()
}

// Export loads the document and writes it once.
func (w *Watcher) Export(ctx context.Context) (WriteResult, error) {
	doc, err := w.store.Load(ctx)
	if err != nil {
		return WriteResult{}, err
	}
	return Write(doc, w.to, w.opt)
}

// Run exports once, then watches the document directory until ctx ends.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(w.store.Dir); err != nil {
		return err
	}

	res, err := w.Export(ctx)
	if w.onExport != nil {
		w.onExport(res, err)
	}

	for {
		select {
		case <-ctx.Done():
			w.stop()
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Write) && w.isDocumentFile(ev.Name) {
				w.Notify()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			if w.onExport != nil {
				w.onExport(WriteResult{}, err)
			}
		}
	}
}

// isDocumentFile matches the sqlite file and its write-ahead log. The shared
// memory index changes on every read and is ignored.
func (w *Watcher) isDocumentFile(name string) bool {
	base := filepath.Base(name)
	doc := filepath.Base(w.store.Path())
	return base == doc || base == doc+"-wal"
}

func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pending = false
}
