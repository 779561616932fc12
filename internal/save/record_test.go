package save_test

import (
	"testing"
	"time"

	"scumgenics/internal/save"
)

func TestParseBackupName(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   time.Time
		wantOK bool
	}{
		{
			name:   "valid name",
			input:  "steamcampaign01_2024-01-15_14-30.savbackup",
			want:   time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "midnight",
			input:  "steamcampaign01_2024-03-02_00-00.savbackup",
			want:   time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "leap day",
			input:  "steamcampaign01_2024-02-29_23-59.savbackup",
			want:   time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC),
			wantOK: true,
		},
		{name: "impossible date", input: "steamcampaign01_2024-02-30_10-00.savbackup"},
		{name: "not a leap year", input: "steamcampaign01_2023-02-29_10-00.savbackup"},
		{name: "month 13", input: "steamcampaign01_2024-13-01_10-00.savbackup"},
		{name: "hour 24", input: "steamcampaign01_2024-01-15_24-00.savbackup"},
		{name: "minute 60", input: "steamcampaign01_2024-01-15_10-60.savbackup"},
		{name: "wrong extension", input: "steamcampaign01_2024-01-15_14-30.sav"},
		{name: "trailing characters", input: "steamcampaign01_2024-01-15_14-30.savbackup.bak"},
		{name: "leading characters", input: "old_steamcampaign01_2024-01-15_14-30.savbackup"},
		{name: "short hour", input: "steamcampaign01_2024-01-15_9-30.savbackup"},
		{name: "seconds included", input: "steamcampaign01_2024-01-15_14-30-05.savbackup"},
		{name: "wrong separators", input: "steamcampaign01_2024_01_15_14_30.savbackup"},
		{name: "other campaign", input: "steamcampaign02_2024-01-15_14-30.savbackup"},
		{name: "non-ascii digits", input: "steamcampaign01_２０２４-01-15_14-30.savbackup"},
		{name: "main save", input: "steamcampaign01.sav"},
		{name: "empty", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := save.ParseBackupName(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseBackupName(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseBackupName(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseBackupName_KeepsWallClock(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}
	orig := time.Local
	time.Local = ny
	t.Cleanup(func() { time.Local = orig })

	// 02:30 on 2024-03-10 does not exist in New York.
	name := "steamcampaign01_2024-03-10_02-30.savbackup"
	ts, ok := save.ParseBackupName(name)
	if !ok {
		t.Fatalf("ParseBackupName(%q) rejected a valid name", name)
	}
	if ts.Hour() != 2 || ts.Minute() != 30 {
		t.Errorf("time = %02d:%02d, want 02:30", ts.Hour(), ts.Minute())
	}
	rec := save.BackupRecord{Name: name, Timestamp: ts, Size: 1}
	if want := "Mar 10, 2024  2:30 AM  •  1 B"; rec.DisplayName() != want {
		t.Errorf("DisplayName() = %q, want %q", rec.DisplayName(), want)
	}
}

func TestBackupName(t *testing.T) {
	ts := time.Date(2024, 3, 2, 9, 5, 59, 0, time.UTC)
	got := save.BackupName(ts)
	want := "steamcampaign01_2024-03-02_09-05.savbackup"
	if got != want {
		t.Errorf("BackupName() = %q, want %q", got, want)
	}

	parsed, ok := save.ParseBackupName(got)
	if !ok {
		t.Fatalf("ParseBackupName(%q) rejected a generated name", got)
	}
	if !parsed.Equal(ts.Truncate(time.Minute)) {
		t.Errorf("parsed = %v, want %v", parsed, ts.Truncate(time.Minute))
	}
}

func TestBackupRecord_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		rec  save.BackupRecord
		want string
	}{
		{
			name: "afternoon",
			rec:  save.BackupRecord{Timestamp: time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC), Size: 123000},
			want: "Jan 15, 2024  2:30 PM  •  123 kB",
		},
		{
			name: "morning single digit day",
			rec:  save.BackupRecord{Timestamp: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), Size: 512},
			want: "Mar 02, 2024  9:00 AM  •  512 B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
