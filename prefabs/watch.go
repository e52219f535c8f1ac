package prefabs

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Editors often write a file several times per save.
const watchDebounce = 100 * time.Millisecond

// reloadable are the extensions the game knows how to hot reload.
var reloadable = map[string]bool{
	".yaml":  true,
	".yml":   true,
	".tengo": true,
}

// Watcher reports edited tunables, narration and behaviour scripts by base
// name. Events is buffered; Drain empties it without blocking.
type Watcher struct {
	fs      *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	done    chan struct{}
	closing sync.Once
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fs:     fw,
		Events: make(chan string, 16),
		Errors: make(chan error, 1),
		done:   make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) Close() error {
	var err error
	w.closing.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}

// Drain returns every pending change without blocking, deduplicated.
func (w *Watcher) Drain() []string {
	if w == nil {
		return nil
	}
	var out []string
	seen := map[string]bool{}
	for {
		select {
		case name := <-w.Events:
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		default:
			return out
		}
	}
}

func (w *Watcher) loop() {
	lastSeen := make(map[string]time.Time)
	for {
		select {
		case <-w.done:
			return
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !reloadable[strings.ToLower(filepath.Ext(ev.Name))] {
				continue
			}
			now := time.Now()
			if t, ok := lastSeen[ev.Name]; ok && now.Sub(t) < watchDebounce {
				continue
			}
			lastSeen[ev.Name] = now
			select {
			case w.Events <- filepath.Base(ev.Name):
			case <-w.done:
				return
			}
		}
	}
}
