package save

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
)

// Manager orchestrates restore and local backup creation for one LocationSet.
// It is the only entry point the presentation layer uses.
//
// Operations are synchronous and not safe for concurrent use: the caller must
// serialize them. Once a restore has deleted the main save it runs to
// completion or failure; there is no cancellation.
type Manager struct {
	locs    LocationSet
	files   FileOps
	catalog *Catalog
	logger  Logger
	clock   Clock
}

// Listing is the result of scanning every backup directory.
type Listing struct {
	Records []BackupRecord
	// Diagnostics holds one *Failure per directory that could not be read.
	Diagnostics []error
}

// NewManager creates a Manager with the provided dependencies.
func NewManager(locs LocationSet, files FileOps, logger Logger, clock Clock) *Manager {
	return &Manager{
		locs:    locs,
		files:   files,
		catalog: NewCatalog(files, logger),
		logger:  logger,
		clock:   clock,
	}
}

// Locations returns the LocationSet the manager was built with.
func (m *Manager) Locations() LocationSet {
	return m.locs
}

// MainSaveExists reports whether the main save file is present.
func (m *Manager) MainSaveExists() bool {
	return m.files.Exists(m.locs.MainSave)
}

// ListBackups scans the game's backup directory and the local backup
// directory and returns their records merged, newest first. When both
// resolve to the same directory it is scanned once, as the game's.
func (m *Manager) ListBackups() Listing {
	var listing Listing
	dirs := []struct {
		path   string
		source Source
	}{
		{m.locs.RemoteBackupDir, SourceGame},
	}
	if filepath.Clean(m.locs.LocalBackupDir) != filepath.Clean(m.locs.RemoteBackupDir) {
		dirs = append(dirs, struct {
			path   string
			source Source
		}{m.locs.LocalBackupDir, SourceLocal})
	}
	for _, dir := range dirs {
		records, err := m.catalog.Scan(dir.path, dir.source)
		if err != nil {
			listing.Diagnostics = append(listing.Diagnostics, err)
		}
		listing.Records = append(listing.Records, records...)
	}
	slices.SortFunc(listing.Records, compareRecords)
	m.logger.Info("backups listed", "count", len(listing.Records), "unreadable_dirs", len(listing.Diagnostics))
	return listing
}

// FindBackup looks up a backup by filename, preferring the game's backup
// directory over the local one.
func (m *Manager) FindBackup(name string) (BackupRecord, error) {
	if _, ok := ParseBackupName(name); !ok {
		return BackupRecord{}, &Failure{
			Op:      "restore",
			Kind:    KindPreconditionFailed,
			Message: "not a backup filename",
			Path:    name,
		}
	}

	listing := m.ListBackups()
	found := -1
	for i, rec := range listing.Records {
		if rec.Name != name {
			continue
		}
		if found == -1 || rec.Source == SourceGame {
			found = i
		}
	}
	if found == -1 {
		return BackupRecord{}, m.notFound(name, listing.Diagnostics)
	}
	return listing.Records[found], nil
}

// notFound explains a failed lookup. If a backup directory could not be
// read, its failure is reported instead, since the backup may be in it.
func (m *Manager) notFound(name string, diagnostics []error) *Failure {
	for _, d := range diagnostics {
		var df *Failure
		if !errors.As(d, &df) {
			continue
		}
		return &Failure{
			Op:      "restore",
			Kind:    df.Kind,
			Message: fmt.Sprintf("backup %s not found; backup directory could not be read", name),
			Path:    df.Path,
			Err:     d,
		}
	}
	return &Failure{
		Op:      "restore",
		Kind:    KindPreconditionFailed,
		Message: fmt.Sprintf("backup file not found in %s or %s", m.locs.RemoteBackupDir, m.locs.LocalBackupDir),
		Path:    filepath.Join(m.locs.RemoteBackupDir, name),
	}
}

// Restore replaces the main save with the content of rec.
//
// The protocol is delete, then copy the backup into the save directory under
// its own filename, then rename that copy to the main save name. There is no
// rollback. If the copy or the rename fails after the delete, the returned
// failure is marked Degraded and carries manual recovery steps.
// The backup file itself is only read.
func (m *Manager) Restore(rec BackupRecord) Outcome {
	mainSave := m.locs.MainSave
	m.logger.Info("restore started", "backup", rec.Path, "main_save", mainSave)

	// Preconditions: nothing has been touched yet.
	if !m.files.Exists(mainSave) {
		m.logger.Error("restore aborted: main save not found", "path", mainSave)
		return &Failure{
			Op:      "restore",
			Kind:    KindPreconditionFailed,
			Message: "main save file not found",
			Path:    mainSave,
		}
	}
	if f, failed := AsFailure(m.files.Readable(rec.Path)); failed {
		m.logger.Error("restore aborted: backup not readable", "path", rec.Path, "error", f)
		return &Failure{
			Op:      "restore",
			Kind:    KindPreconditionFailed,
			Message: "backup file is missing or not readable",
			Path:    rec.Path,
			Err:     f,
		}
	}

	// Step 1: delete. On failure the system is unchanged.
	if f, failed := AsFailure(m.files.Delete(mainSave)); failed {
		m.logger.Error("restore aborted: could not delete main save", "path", mainSave, "error", f)
		return &Failure{
			Op:      "restore",
			Kind:    f.Kind,
			Message: "could not delete the main save; nothing was changed",
			Path:    mainSave,
			Err:     f,
		}
	}

	// Step 2: copy under the transient name.
	transient := filepath.Join(filepath.Dir(mainSave), rec.Name)
	if f, failed := AsFailure(m.files.Copy(rec.Path, transient)); failed {
		m.logger.Error("restore degraded: main save deleted but backup copy failed",
			"backup", rec.Path, "target", transient, "error", f)
		return &Failure{
			Op:       "restore",
			Kind:     f.Kind,
			Message:  "main save was deleted but the backup could not be copied into place (degraded state)",
			Path:     rec.Path,
			Err:      f,
			Cleanup:  f.Cleanup,
			Degraded: true,
			Recovery: fmt.Sprintf("Please manually copy:\n  %s\nto:\n  %s", rec.Path, mainSave),
		}
	}

	// Step 3: rename into place.
	if f, failed := AsFailure(m.files.Rename(transient, mainSave)); failed {
		m.logger.Error("restore degraded: backup copied but rename failed",
			"transient", transient, "target", mainSave, "error", f)
		return &Failure{
			Op:       "restore",
			Kind:     f.Kind,
			Message:  "backup was copied but could not be renamed to the main save name (degraded state)",
			Path:     transient,
			Err:      f,
			Degraded: true,
			Recovery: fmt.Sprintf("The backup copy is at:\n  %s\nPlease manually rename it to:\n  %s", transient, mainSave),
		}
	}

	m.logger.Info("restore completed", "backup", rec.Path, "main_save", mainSave)
	return Success{
		Message: fmt.Sprintf("Backup restored successfully: %s -> %s", rec.Name, mainSave),
		Path:    mainSave,
	}
}

// CreateLocalBackup copies the main save into the local backup directory
// under a name stamped with the current minute. A second backup within the
// same minute replaces the first. The main save is only read.
func (m *Manager) CreateLocalBackup() Outcome {
	mainSave := m.locs.MainSave
	m.logger.Info("local backup started", "main_save", mainSave)

	if !m.files.Exists(mainSave) {
		m.logger.Error("local backup aborted: main save not found", "path", mainSave)
		return &Failure{
			Op:      "backup",
			Kind:    KindPreconditionFailed,
			Message: "main save file not found",
			Path:    mainSave,
		}
	}

	dir := m.locs.LocalBackupDir
	if f, failed := AsFailure(m.files.EnsureDirectory(dir)); failed {
		m.logger.Error("local backup aborted: could not create directory", "dir", dir, "error", f)
		return &Failure{
			Op:      "backup",
			Kind:    f.Kind,
			Message: "could not create the local backup directory",
			Path:    dir,
			Err:     f,
		}
	}

	dest := filepath.Join(dir, BackupName(m.clock.Now()))
	if f, failed := AsFailure(m.files.Copy(mainSave, dest)); failed {
		m.logger.Error("local backup failed: copy", "source", mainSave, "dest", dest, "error", f)
		return &Failure{
			Op:      "backup",
			Kind:    f.Kind,
			Message: "could not copy the main save",
			Path:    dest,
			Err:     f,
			Cleanup: f.Cleanup,
		}
	}

	m.logger.Info("local backup created", "path", dest)
	return Success{
		Message: fmt.Sprintf("Local backup created successfully: %s", dest),
		Path:    dest,
	}
}
