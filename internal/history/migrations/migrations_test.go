package migrations

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestApply_CreatesOperationsTable(t *testing.T) {
	db := openTestDB(t)

	if err := Apply(db); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='operations'").Scan(&name)
	if err != nil {
		t.Errorf("operations table was not created: %v", err)
	}
}

func TestApply_Twice(t *testing.T) {
	db := openTestDB(t)

	if err := Apply(db); err != nil {
		t.Fatalf("first Apply() error = %v", err)
	}
	if err := Apply(db); err != nil {
		t.Errorf("second Apply() error = %v", err)
	}
	if err := Verify(db); err != nil {
		t.Errorf("Verify() after two applies = %v", err)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		apply   bool
		tamper  string
		wantErr error
	}{
		{name: "fresh database", wantErr: ErrUnversioned},
		{name: "current schema", apply: true},
		{name: "interrupted change", apply: true, tamper: "UPDATE schema_migrations SET dirty = 1", wantErr: ErrDirty},
		{name: "written by a newer program", apply: true, tamper: "UPDATE schema_migrations SET version = 99", wantErr: ErrNewer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openTestDB(t)
			if tt.apply {
				if err := Apply(db); err != nil {
					t.Fatalf("Apply() error = %v", err)
				}
			}
			if tt.tamper != "" {
				if _, err := db.Exec(tt.tamper); err != nil {
					t.Fatalf("tampering with schema version: %v", err)
				}
			}

			err := Verify(db)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Verify() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLatest(t *testing.T) {
	v, err := Latest()
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if v != 1 {
		t.Errorf("Latest() = %d, want 1", v)
	}
}

func TestSchema_StatusConstraint(t *testing.T) {
	db := openTestDB(t)
	if err := Apply(db); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	_, err := db.Exec(`INSERT INTO operations (op_id, operation, started_at, status)
		VALUES ('a', 'restore', datetime('now'), 'running')`)
	if err != nil {
		t.Fatalf("insert with valid status failed: %v", err)
	}

	_, err = db.Exec(`INSERT INTO operations (op_id, operation, started_at, status)
		VALUES ('b', 'restore', datetime('now'), 'exploded')`)
	if err == nil {
		t.Error("expected check constraint violation for unknown status")
	}

	_, err = db.Exec(`INSERT INTO operations (op_id, operation, started_at)
		VALUES ('a', 'backup', datetime('now'))`)
	if err == nil {
		t.Error("expected unique constraint violation for duplicate op_id")
	}
}

// openTestDB opens an in-memory SQLite database pinned to one connection.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}
