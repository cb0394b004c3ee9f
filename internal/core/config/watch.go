package config

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 100 * time.Millisecond

// Watcher reloads a definitions file whenever it, or a stacking script next
// to it, changes on disk. Successfully reloaded configs arrive on Reloads;
// load and watch failures arrive on Errors.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string

	Reloads chan *Config
	Errors  chan error

	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher watches the directory of path plus any extra directories.
func NewWatcher(path string, dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range append([]string{filepath.Dir(path)}, dirs...) {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		path:    path,
		Reloads: make(chan *Config, 4),
		Errors:  make(chan error, 4),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Reloads)
		close(w.Errors)
	})
	return err
}

// run reloads once a file has been quiet for the debounce interval, so a
// save that truncates and then writes is read only after the write.
func (w *Watcher) run() {
	defer close(w.done)

	quiet := time.NewTimer(debounce)
	quiet.Stop()
	defer quiet.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !isDefinitionFile(event.Name) && !isScriptFile(event.Name) {
				continue
			}
			quiet.Reset(debounce)
		case <-quiet.C:
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.send(nil, err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadFile(w.path)
	w.send(cfg, err)
}

// send never blocks the watch loop. When the consumer falls behind the
// oldest queued value is dropped, so the latest reload always arrives.
func (w *Watcher) send(cfg *Config, err error) {
	if err != nil {
		pushLatest(w.Errors, err)
		return
	}
	pushLatest(w.Reloads, cfg)
}

func pushLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func isDefinitionFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".tengo"
}
