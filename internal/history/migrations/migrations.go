// Package migrations owns the history database schema. The schema files are
// embedded, so a binary always knows which version it expects.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var schemaFiles embed.FS

const schemaDir = "files"

var (
	// ErrUnversioned means the history schema was never applied.
	ErrUnversioned = errors.New("history schema not applied")
	// ErrDirty means a schema change stopped part way.
	ErrDirty = errors.New("history schema change did not finish")
	// ErrOutdated means the history file predates this binary's schema.
	ErrOutdated = errors.New("history schema is older than this program")
	// ErrNewer means the history file was written by a newer program.
	ErrNewer = errors.New("history schema is newer than this program")
)

// Verify checks that the history schema in db matches Latest.
func Verify(db *sql.DB) error {
	m, err := open(db)
	if err != nil {
		return err
	}
	// Not closed: Close would close db, which belongs to the caller.

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return ErrUnversioned
	case err != nil:
		return fmt.Errorf("reading history schema version: %w", err)
	case dirty:
		return fmt.Errorf("%w: stuck at version %d", ErrDirty, version)
	}

	latest, err := Latest()
	if err != nil {
		return err
	}
	if version < latest {
		return fmt.Errorf("%w: have %d, want %d", ErrOutdated, version, latest)
	}
	if version > latest {
		return fmt.Errorf("%w: have %d, want %d", ErrNewer, version, latest)
	}
	return nil
}

// Apply brings the history schema in db up to Latest. An already current
// schema is left alone.
func Apply(db *sql.DB) error {
	m, err := open(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying history schema: %w", err)
	}
	return nil
}

// Latest returns the newest schema version embedded in the binary.
func Latest() (uint, error) {
	src, err := iofs.New(schemaFiles, schemaDir)
	if err != nil {
		return 0, fmt.Errorf("reading embedded history schema: %w", err)
	}
	defer src.Close()
	return lastVersion(src)
}

func open(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(schemaFiles, schemaDir)
	if err != nil {
		return nil, fmt.Errorf("reading embedded history schema: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("attaching to history database: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("preparing history schema: %w", err)
	}
	return m, nil
}

func lastVersion(src source.Driver) (uint, error) {
	v, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("embedded history schema is empty: %w", err)
	}
	for {
		next, err := src.Next(v)
		if err != nil {
			return v, nil
		}
		v = next
	}
}
