package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"scumgenics/internal/config"
	"scumgenics/internal/history/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Operation statuses. A row stays StatusRunning until Finish is called, so a
// running row seen by a later process marks an interrupted operation.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusError   = "error"
)

// Operation is one recorded restore or backup attempt.
type Operation struct {
	ID         int64
	OpID       string
	Operation  string
	Parameters string
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Status     string
	Kind       string
	Path       string
	Message    string
	Degraded   bool
}

// Store persists Operations in SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewSQLiteStore opens the history database at path and migrates it to the
// latest schema. path can be a file path or ":memory:".
func NewSQLiteStore(path string) (*Store, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.Apply(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history database: %w", err)
	}
	return &Store{db: db, path: path, now: time.Now}, nil
}

// NewStoreFromConfig creates a Store based on the database config type.
func NewStoreFromConfig(cfg config.DatabaseConfig) (*Store, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "history.db"))
	case "memory":
		return NewSQLiteStore(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

// OpenConnection opens and configures a SQLite connection.
func OpenConnection(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		// Wait up to 5s for a lock held by another scumgenics process.
		dsn += "?_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// Start records a new running operation and returns it with its ID set.
func (s *Store) Start(operation, parameters string) (*Operation, error) {
	op := &Operation{
		OpID:       uuid.NewString(),
		Operation:  operation,
		Parameters: parameters,
		StartedAt:  s.now(),
		Status:     StatusRunning,
	}

	res, err := s.db.ExecContext(context.Background(),
		`INSERT INTO operations (op_id, operation, parameters, started_at, status)
		 VALUES (?, ?, ?, ?, ?)`,
		op.OpID, op.Operation, op.Parameters, op.StartedAt, op.Status)
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	op.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading operation id: %w", err)
	}
	return op, nil
}

// Finish stores the final status and failure details of op.
func (s *Store) Finish(op *Operation) error {
	if op.Status == StatusRunning {
		return fmt.Errorf("finishing operation %d: status must not be %q", op.ID, StatusRunning)
	}
	op.FinishedAt = sql.NullTime{Time: s.now(), Valid: true}

	res, err := s.db.ExecContext(context.Background(),
		`UPDATE operations
		 SET finished_at = ?, status = ?, kind = ?, path = ?, message = ?, degraded = ?
		 WHERE id = ?`,
		op.FinishedAt, op.Status, op.Kind, op.Path, op.Message, op.Degraded, op.ID)
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finishing operation %d: %w", op.ID, sql.ErrNoRows)
	}
	return nil
}

// List returns the most recent operations, newest first.
func (s *Store) List(limit int) ([]*Operation, error) {
	ops, err := s.query(`SELECT `+columns+` FROM operations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

// Unfinished returns operations that were started but never finished,
// oldest first.
func (s *Store) Unfinished() ([]*Operation, error) {
	ops, err := s.query(`SELECT `+columns+` FROM operations WHERE status = ? ORDER BY id`, StatusRunning)
	if err != nil {
		return nil, fmt.Errorf("listing unfinished operations: %w", err)
	}
	return ops, nil
}

// Get returns the operation with the given ID, or nil if there is none.
func (s *Store) Get(id int64) (*Operation, error) {
	row := s.db.QueryRowContext(context.Background(), `SELECT `+columns+` FROM operations WHERE id = ?`, id)
	op, err := scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting operation: %w", err)
	}
	return op, nil
}

// Path returns the database file path (or ":memory:").
func (s *Store) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *Store) CheckMigrations() error {
	return migrations.Verify(s.db)
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const columns = `id, op_id, operation, parameters, started_at, finished_at, status, kind, path, message, degraded`

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*Operation, error) {
	var op Operation
	err := row.Scan(&op.ID, &op.OpID, &op.Operation, &op.Parameters, &op.StartedAt,
		&op.FinishedAt, &op.Status, &op.Kind, &op.Path, &op.Message, &op.Degraded)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func (s *Store) query(q string, args ...any) ([]*Operation, error) {
	rows, err := s.db.QueryContext(context.Background(), q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []*Operation
	for rows.Next() {
		op, err := scan(rows)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}
