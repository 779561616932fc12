// Package watch reports backup files as they appear in the backup directories.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fsnotify/fsnotify"

	"scumgenics/internal/save"
)

// Watcher notifies about backup files created in a set of directories.
// Only names in the backup filename grammar are reported.
type Watcher struct {
	watcher *fsnotify.Watcher
	dirs    map[string]save.Source
	logger  save.Logger
	seen    map[string]struct{}
}

// New creates a Watcher over dirs. Directories that do not exist are skipped
// with a warning; at least one must exist.
func New(dirs map[string]save.Source, logger save.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		watcher: fw,
		dirs:    make(map[string]save.Source),
		logger:  logger,
		seen:    make(map[string]struct{}),
	}
	for dir, source := range dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			logger.Warn("not watching missing backup directory", "dir", dir)
			continue
		}
		if err := fw.Add(dir); err != nil {
			logger.Warn("failed to watch backup directory", "dir", dir, "error", err)
			continue
		}
		w.dirs[filepath.Clean(dir)] = source
	}

	if len(w.dirs) == 0 {
		fw.Close()
		return nil, fmt.Errorf("none of the backup directories exist")
	}
	return w, nil
}

// Dirs returns the directories being watched, sorted.
func (w *Watcher) Dirs() []string {
	out := make([]string, 0, len(w.dirs))
	for d := range w.dirs {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Run delivers a record to fn for each new backup file until ctx is done or
// the watcher is closed. fn runs on the calling goroutine.
func (w *Watcher) Run(ctx context.Context, fn func(save.BackupRecord)) error {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if rec, ok := w.handleEvent(event); ok {
				fn(rec)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("backup watcher error", "error", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// handleEvent turns a filesystem event into a record. A file is reported
// once when it appears; later writes to it are ignored until it is removed.
func (w *Watcher) handleEvent(event fsnotify.Event) (save.BackupRecord, bool) {
	path := filepath.Clean(event.Name)

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		delete(w.seen, path)
		return save.BackupRecord{}, false
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return save.BackupRecord{}, false
	}
	if _, dup := w.seen[path]; dup {
		return save.BackupRecord{}, false
	}

	source, ok := w.dirs[filepath.Dir(path)]
	if !ok {
		return save.BackupRecord{}, false
	}
	name := filepath.Base(path)
	ts, ok := save.ParseBackupName(name)
	if !ok {
		return save.BackupRecord{}, false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return save.BackupRecord{}, false
	}

	w.seen[path] = struct{}{}
	w.logger.Info("backup file appeared", "path", path, "source", source)
	return save.BackupRecord{
		Name:      name,
		Path:      path,
		Timestamp: ts,
		Size:      info.Size(),
		Source:    source,
	}, true
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
