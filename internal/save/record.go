package save

import (
	"cmp"
	"fmt"
	"regexp"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	backupPrefix = "steamcampaign01_"
	backupExt    = ".savbackup"
	stampLayout  = "2006-01-02_15-04"
)

var backupNameRE = regexp.MustCompile(`^steamcampaign01_([0-9]{4}-[0-9]{2}-[0-9]{2}_[0-9]{2}-[0-9]{2})\.savbackup$`)

// Source tells which directory a backup was found in.
type Source int

const (
	// SourceGame is the backup directory the game itself writes to.
	SourceGame Source = iota
	// SourceLocal is this application's own backup directory.
	SourceLocal
)

func (s Source) String() string {
	if s == SourceLocal {
		return "local"
	}
	return "game"
}

// BackupRecord describes one backup file found by a scan.
// Timestamp always comes from the filename, never from file metadata. It
// carries the filename's wall-clock fields in UTC.
type BackupRecord struct {
	Name      string
	Path      string
	Timestamp time.Time
	Size      int64
	Source    Source
}

// DisplayName formats the record for list views, e.g.
// "Jan 15, 2024  2:30 PM  •  123 kB".
func (r BackupRecord) DisplayName() string {
	return fmt.Sprintf("%s  %s  •  %s",
		r.Timestamp.Format("Jan 02, 2006"),
		r.Timestamp.Format("3:04 PM"),
		humanize.Bytes(uint64(r.Size)),
	)
}

// BackupName returns the backup filename for t at minute precision.
func BackupName(t time.Time) string {
	return backupPrefix + t.Format(stampLayout) + backupExt
}

// ParseBackupName extracts the timestamp from a backup filename. It reports
// false for anything that does not match the grammar exactly, including
// impossible dates like 2024-02-30 and times like 24-00.
//
// The stamp is local wall-clock time with no zone, so it is parsed as UTC to
// keep the fields as written. Times skipped by a DST change stay intact.
func ParseBackupName(name string) (time.Time, bool) {
	m := backupNameRE.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(stampLayout, m[1], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// compareRecords orders newest first, then by name and path descending.
func compareRecords(a, b BackupRecord) int {
	if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Name, a.Name); c != 0 {
		return c
	}
	return cmp.Compare(b.Path, a.Path)
}
