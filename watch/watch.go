// Package watch reports changes to a fixed set of files.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"
)

// DefaultSettle is how long a Watcher waits for more changes before
// reporting a batch.
const DefaultSettle = 100 * time.Millisecond

// Watcher coalesces file system events for a set of files into batches of
// changed paths.
type Watcher struct {
	w      *fsnotify.Watcher
	files  map[string]bool
	settle time.Duration
	log    commonlog.Logger
}

// New watches files. Directories containing them are watched instead of the
// files themselves so editors that replace files on save are followed.
func New(files ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	fw := &Watcher{
		w:      w,
		files:  make(map[string]bool),
		settle: DefaultSettle,
		log:    commonlog.GetLogger("gpeg.watch"),
	}
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("watch %s: %w", f, err)
		}
		fw.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return fw, nil
}

// SetSettle changes the batching delay.
func (fw *Watcher) SetSettle(d time.Duration) {
	fw.settle = d
}

// Run calls fn with every batch of changed files until ctx is done or fn
// returns an error. Errors from the file system watcher are logged.
func (fw *Watcher) Run(ctx context.Context, fn func(changed []string) error) error {
	var timer <-chan time.Time
	pending := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !fw.files[abs] {
				continue
			}
			fw.log.Debugf("%s: %s", ev.Op, abs)
			pending[abs] = true
			timer = time.After(fw.settle)
		case err, ok := <-fw.w.Errors:
			if !ok {
				return nil
			}
			fw.log.Errorf("watch: %s", err)
		case <-timer:
			timer = nil
			changed := make([]string, 0, len(pending))
			for f := range pending {
				changed = append(changed, f)
			}
			clear(pending)
			if err := fn(changed); err != nil {
				return err
			}
		}
	}
}

// Close stops watching.
func (fw *Watcher) Close() error {
	return fw.w.Close()
}
