package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"scumgenics/internal/config"
)

// newTestStore creates an in-memory store with the schema applied.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStoreFromConfig(t *testing.T) {
	t.Run("memory database", func(t *testing.T) {
		s, err := NewStoreFromConfig(config.DatabaseConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		defer s.Close()
		if s.Path() != ":memory:" {
			t.Errorf("Path() = %q", s.Path())
		}
	})

	t.Run("sqlite database creates data dir", func(t *testing.T) {
		dataDir := filepath.Join(t.TempDir(), "db")
		s, err := NewStoreFromConfig(config.DatabaseConfig{Type: "sqlite", DataDir: dataDir})
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		defer s.Close()

		if _, err := os.Stat(filepath.Join(dataDir, "history.db")); err != nil {
			t.Errorf("database file not created: %v", err)
		}
		if err := s.CheckMigrations(); err != nil {
			t.Errorf("CheckMigrations() error = %v", err)
		}
	})

	t.Run("sqlite database without data_dir", func(t *testing.T) {
		s, err := NewStoreFromConfig(config.DatabaseConfig{Type: "sqlite"})
		if err == nil {
			s.Close()
			t.Fatal("NewStoreFromConfig() expected error for missing data_dir")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		s, err := NewStoreFromConfig(config.DatabaseConfig{Type: "postgres"})
		if err == nil {
			s.Close()
			t.Fatal("NewStoreFromConfig() expected error for unknown type")
		}
	})
}

func TestStore_StartFinish(t *testing.T) {
	t.Run("start records a running operation", func(t *testing.T) {
		s := newTestStore(t)

		op, err := s.Start("restore", "steamcampaign01_2024-01-15_14-30.savbackup")
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if op.ID == 0 || op.OpID == "" {
			t.Errorf("Start() did not assign ids: %+v", op)
		}

		got, err := s.Get(op.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Status != StatusRunning || got.FinishedAt.Valid {
			t.Errorf("stored operation = %+v, want running and unfinished", got)
		}
		if got.OpID != op.OpID || got.Parameters != op.Parameters {
			t.Errorf("stored operation = %+v, want %+v", got, op)
		}
	})

	t.Run("finish stores failure details", func(t *testing.T) {
		s := newTestStore(t)
		op, err := s.Start("restore", "b.savbackup")
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}

		op.Status = StatusError
		op.Kind = "I/O error"
		op.Path = "/saves/backups/b.savbackup"
		op.Message = "copy failed"
		op.Degraded = true
		if err := s.Finish(op); err != nil {
			t.Fatalf("Finish() error = %v", err)
		}

		got, err := s.Get(op.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Status != StatusError || got.Kind != "I/O error" || got.Path != op.Path ||
			got.Message != "copy failed" || !got.Degraded {
			t.Errorf("stored operation = %+v", got)
		}
		if !got.FinishedAt.Valid {
			t.Error("FinishedAt not set")
		}
	})

	t.Run("finish rejects running status", func(t *testing.T) {
		s := newTestStore(t)
		op, _ := s.Start("backup", "")
		if err := s.Finish(op); err == nil {
			t.Error("Finish() expected error for running status")
		}
	})

	t.Run("finish unknown operation", func(t *testing.T) {
		s := newTestStore(t)
		op := &Operation{ID: 42, Status: StatusSuccess}
		if err := s.Finish(op); err == nil {
			t.Error("Finish() expected error for unknown id")
		}
	})

	t.Run("get unknown operation", func(t *testing.T) {
		s := newTestStore(t)
		got, err := s.Get(99)
		if err != nil || got != nil {
			t.Errorf("Get() = %v, %v; want nil, nil", got, err)
		}
	})
}

func TestStore_List(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for _, name := range []string{"backup", "restore", "backup"} {
		op, err := s.Start(name, "")
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		op.Status = StatusSuccess
		if err := s.Finish(op); err != nil {
			t.Fatalf("Finish() error = %v", err)
		}
	}

	ops, err := s.List(2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("List(2) returned %d operations", len(ops))
	}
	if ops[0].ID <= ops[1].ID {
		t.Errorf("List() not newest first: %d then %d", ops[0].ID, ops[1].ID)
	}
	if ops[0].Operation != "backup" || ops[1].Operation != "restore" {
		t.Errorf("List() = %s, %s", ops[0].Operation, ops[1].Operation)
	}
	if !ops[1].StartedAt.Equal(base.Add(3 * time.Minute)) {
		t.Errorf("StartedAt = %v, want %v", ops[1].StartedAt, base.Add(3*time.Minute))
	}
}

func TestStore_Unfinished(t *testing.T) {
	s := newTestStore(t)

	done, _ := s.Start("backup", "")
	done.Status = StatusSuccess
	if err := s.Finish(done); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	interrupted, _ := s.Start("restore", "steamcampaign01_2024-01-15_14-30.savbackup")

	ops, err := s.Unfinished()
	if err != nil {
		t.Fatalf("Unfinished() error = %v", err)
	}
	if len(ops) != 1 || ops[0].ID != interrupted.ID {
		t.Errorf("Unfinished() = %+v, want only the interrupted restore", ops)
	}
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	op, err := s.Start("restore", "x")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	s.Close()

	s, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	ops, err := s.Unfinished()
	if err != nil {
		t.Fatalf("Unfinished() error = %v", err)
	}
	if len(ops) != 1 || ops[0].OpID != op.OpID {
		t.Errorf("Unfinished() after reopen = %+v", ops)
	}
}
