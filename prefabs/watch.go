package prefabs

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind tells clip prefab edits from selector script edits.
type ChangeKind int

const (
	ClipChange ChangeKind = iota
	ScriptChange
)

func (k ChangeKind) String() string {
	if k == ScriptChange {
		return "script"
	}
	return "clip"
}

// Script editors often save through a temp file and a rename, which lands as
// a burst of events, so scripts settle for longer than clip prefabs.
var settle = map[ChangeKind]time.Duration{
	ClipChange:   100 * time.Millisecond,
	ScriptChange: 250 * time.Millisecond,
}

// Change is one changed prefab file.
type Change struct {
	Path string
	Kind ChangeKind
}

// ClassifyChange reports what kind of prefab path is, if any.
func ClassifyChange(path string) (Change, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return Change{Path: path, Kind: ClipChange}, true
	case ".tengo":
		return Change{Path: path, Kind: ScriptChange}, true
	}
	return Change{}, false
}

// Watcher reports changed clip prefabs and selector scripts. Both channels
// close after Close.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan Change
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan Change, 16),
		Errors:  make(chan error, 1),
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
	})
	return err
}

func (w *Watcher) run() {
	defer func() {
		close(w.Events)
		close(w.Errors)
		close(w.done)
	}()
	seen := make(map[Change]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			ch, ok := ClassifyChange(event.Name)
			if !ok {
				continue
			}
			now := time.Now()
			if t, ok := seen[ch]; ok && now.Sub(t) < settle[ch.Kind] {
				continue
			}
			seen[ch] = now
			select {
			case w.Events <- ch:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			case <-w.closeCh:
				return
			default:
				// reader is behind
			}
		case <-w.closeCh:
			return
		}
	}
}
