package save

import (
	"errors"
	"path/filepath"
	"slices"
)

// Catalog discovers backup files in a directory.
type Catalog struct {
	files  FileOps
	logger Logger
}

// NewCatalog creates a Catalog that lists directories through files.
func NewCatalog(files FileOps, logger Logger) *Catalog {
	return &Catalog{files: files, logger: logger}
}

// Scan returns the backups in dir, newest first. Entries that do not match the
// backup filename grammar, are not regular files, or cannot be stat'ed are
// skipped. A directory that does not exist holds no backups.
//
// When dir cannot be read, Scan returns an empty slice and a *Failure, so a
// caller can tell "no backups" apart from "cannot read the backup directory".
// Nothing is cached: each call reflects the directory as it is now.
func (c *Catalog) Scan(dir string, source Source) ([]BackupRecord, error) {
	records := []BackupRecord{}

	entries, err := c.files.List(dir)
	if err != nil {
		var f *Failure
		if errors.As(err, &f) && f.Kind == KindNotFound {
			c.logger.Debug("backup directory does not exist", "dir", dir)
			return records, nil
		}
		c.logger.Error("cannot read backup directory", "dir", dir, "error", err)
		return records, err
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		ts, ok := ParseBackupName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			c.logger.Warn("skipping unreadable backup", "path", filepath.Join(dir, entry.Name()), "error", err)
			continue
		}
		records = append(records, BackupRecord{
			Name:      entry.Name(),
			Path:      filepath.Join(dir, entry.Name()),
			Timestamp: ts,
			Size:      info.Size(),
			Source:    source,
		})
	}

	slices.SortFunc(records, compareRecords)
	c.logger.Debug("scanned backup directory", "dir", dir, "count", len(records))
	return records, nil
}
