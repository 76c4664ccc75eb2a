// Package watch reports changes to cutscene assets on disk so the player can
// reload them without a restart.
package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce is how long a file must stay quiet before its change is
// reported. Editors and the extraction tool often write a file in several
// chunks; only the last one yields an event.
const debounce = 100 * time.Millisecond

// Watcher delivers slash-separated paths, relative to the watched root, of
// asset files that were written, created, renamed or removed.
//
// Events and Errors are closed once the watcher stops.
type Watcher struct {
	watcher *fsnotify.Watcher
	root    string
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// New watches root and every directory below it.
func New(root string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
	if err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		watcher: w,
		root:    root,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

// Drain returns every pending event without blocking, with duplicates
// removed. It is meant to be called once per tick from the game loop.
func (w *Watcher) Drain() []string {
	var changed []string
	seen := make(map[string]bool)
	for {
		select {
		case name, ok := <-w.Events:
			if !ok {
				return changed
			}
			if !seen[name] {
				seen[name] = true
				changed = append(changed, name)
			}
		default:
			return changed
		}
	}
}

func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)

	pending := make(map[string]time.Time) // path -> time it is reported
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	var fire <-chan time.Time

	schedule := func() {
		if len(pending) == 0 {
			fire = nil
			return
		}
		var next time.Time
		for _, due := range pending {
			if next.IsZero() || due.Before(next) {
				next = due
			}
		}
		timer.Reset(time.Until(next))
		fire = timer.C
	}

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 && isDir(event.Name) {
				_ = w.watcher.Add(event.Name)
				continue
			}
			if !IsAssetFile(event.Name) {
				continue
			}
			pending[event.Name] = time.Now().Add(debounce)
			schedule()
		case <-fire:
			now := time.Now()
			var due []string
			for name, at := range pending {
				if !at.After(now) {
					due = append(due, name)
				}
			}
			slices.Sort(due)
			for _, name := range due {
				delete(pending, name)
				select {
				case w.Events <- w.relative(name):
				case <-w.closeCh:
					return
				}
			}
			schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) relative(name string) string {
	rel, err := filepath.Rel(w.root, name)
	if err != nil {
		return filepath.ToSlash(name)
	}
	return filepath.ToSlash(rel)
}

// IsAssetFile reports whether a change to path can affect a cutscene.
func IsAssetFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".png", ".webp", ".jpg", ".jpeg", ".wav", ".mp3", ".ogg":
		return true
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
