package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to a single file. The parent directory is watched
// so that editors which replace the file on save are still noticed.
type Watcher struct {
	path    string
	w       *fsnotify.Watcher
	changes chan struct{}
	errs    chan error
}

// Watch starts watching path until ctx is cancelled.
func Watch(ctx context.Context, path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    abs,
		w:       fw,
		changes: make(chan struct{}, 1),
		errs:    make(chan error, 1),
	}
	go w.loop(ctx)
	return w, nil
}

// Changes fires at most once per burst of writes; it is closed when the
// watcher stops.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

func (w *Watcher) Errors() <-chan error { return w.errs }

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.changes)
	defer w.w.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write | fsnotify.Create | fsnotify.Rename) {
				continue
			}
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}
