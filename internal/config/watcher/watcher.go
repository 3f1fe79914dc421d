// Package watcher reports changes to configuration and hook files so the
// demo can reload them while it runs.
//
// Each file's parent directory is what gets registered with fsnotify. Editors
// that save by writing a temporary file and renaming it over the original are
// still seen, and a file may be watched before it exists.
package watcher

import (
	"errors"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a path must stay quiet before its change is
// delivered.
const DefaultDebounce = 100 * time.Millisecond

var ErrClosed = errors.New("watcher closed")

// Operation is the kind of change seen on a watched path.
type Operation int

const (
	OpWrite Operation = iota
	OpCreate
	OpRemove
	OpRename
)

var opNames = [...]string{OpWrite: "write", OpCreate: "create", OpRemove: "remove", OpRename: "rename"}

func (op Operation) String() string {
	if op >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return "unknown"
}

// Event is one delivered change. Path is absolute.
type Event struct {
	Path string
	Op   Operation
	Time time.Time
}

// Handler receives events on the watcher's own goroutines. A panicking
// handler is logged and does not stop delivery to the others.
type Handler func(Event)

// Watcher delivers debounced change events for a set of files.
type Watcher struct {
	fsw      *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	mu       sync.Mutex
	files    map[string]struct{}
	dirRefs  map[string]int
	handlers []Handler
	timers   map[string]*queued
	closed   bool

	done chan struct{}
	wg   sync.WaitGroup
}

type queued struct {
	ev    Event
	timer *time.Timer
}

type Option func(*Watcher)

// WithDebounce sets the quiet period. Zero delivers every event at once.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New starts a watcher with nothing registered.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
		files:    map[string]struct{}{},
		dirRefs:  map[string]int{},
		timers:   map[string]*queued{},
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Watch registers path. Watching a path twice is a no-op.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.closed:
		return ErrClosed
	case hasKey(w.files, abs):
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirRefs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirRefs[dir]++
	w.files[abs] = struct{}{}
	return nil
}

// Unwatch drops path. The directory stays registered while other watched
// files live in it.
func (w *Watcher) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.closed:
		return ErrClosed
	case !hasKey(w.files, abs):
		return nil
	}
	delete(w.files, abs)
	dir := filepath.Dir(abs)
	if w.dirRefs[dir]--; w.dirRefs[dir] > 0 {
		return nil
	}
	delete(w.dirRefs, dir)
	return w.fsw.Remove(dir)
}

func (w *Watcher) OnChange(h Handler) {
	w.mu.Lock()
	w.handlers = append(w.handlers, h)
	w.mu.Unlock()
}

// WatchedFiles returns the absolute paths being watched, sorted.
func (w *Watcher) WatchedFiles() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Close stops the event loop. Changes still waiting out the debounce are
// dropped. Close is idempotent.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for p, q := range w.timers {
		q.timer.Stop()
		delete(w.timers, p)
	}
	close(w.done)
	w.mu.Unlock()

	w.wg.Wait()
	return w.fsw.Close()
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case fe, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.receive(fe)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) receive(fe fsnotify.Event) {
	op, ok := operationOf(fe.Op)
	if !ok {
		return
	}
	ev := Event{Path: filepath.Clean(fe.Name), Op: op, Time: time.Now()}

	w.mu.Lock()
	if w.closed || !hasKey(w.files, ev.Path) {
		w.mu.Unlock()
		return
	}
	if w.debounce == 0 {
		w.mu.Unlock()
		w.emit(ev)
		return
	}
	if q, ok := w.timers[ev.Path]; ok {
		q.ev.Op = coalesce(q.ev.Op, ev.Op)
		q.ev.Time = ev.Time
		q.timer.Reset(w.debounce)
	} else {
		path := ev.Path
		w.timers[path] = &queued{ev: ev, timer: time.AfterFunc(w.debounce, func() { w.fire(path) })}
	}
	w.mu.Unlock()
}

// operationOf maps an fsnotify op, reporting false for chmod.
func operationOf(op fsnotify.Op) (Operation, bool) {
	for _, m := range []struct {
		bit fsnotify.Op
		op  Operation
	}{
		{fsnotify.Remove, OpRemove},
		{fsnotify.Rename, OpRename},
		{fsnotify.Create, OpCreate},
		{fsnotify.Write, OpWrite},
	} {
		if op.Has(m.bit) {
			return m.op, true
		}
	}
	return 0, false
}

// coalesce merges a queued operation with a newer one. A write never hides
// an earlier create or remove.
func coalesce(queued, next Operation) Operation {
	if next == OpWrite {
		return queued
	}
	return next
}

func (w *Watcher) fire(path string) {
	w.mu.Lock()
	q, ok := w.timers[path]
	if ok {
		delete(w.timers, path)
	}
	closed := w.closed
	w.mu.Unlock()
	if ok && !closed {
		w.emit(q.ev)
	}
}

func (w *Watcher) emit(ev Event) {
	w.mu.Lock()
	hs := slices.Clone(w.handlers)
	w.mu.Unlock()
	for _, h := range hs {
		w.call(h, ev)
	}
}

func (w *Watcher) call(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("watch handler panicked", "path", ev.Path, "op", ev.Op, "panic", r)
		}
	}()
	h(ev)
}

func hasKey[K comparable, V any](m map[K]V, k K) bool {
	_, ok := m[k]
	return ok
}
