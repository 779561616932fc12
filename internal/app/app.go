package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"scumgenics/internal/config"
	"scumgenics/internal/fs"
	"scumgenics/internal/history"
	"scumgenics/internal/save"
	"scumgenics/internal/watch"
)

// App is the application layer between the CLI and save.Manager.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw filenames, and records each mutating operation in the
// history database. The caller must call Close when done.
type App struct {
	cfg      *config.Config
	identity string
	manager  *save.Manager
	history  *history.Store
	logger   *slog.Logger
	logFile  *os.File
}

// NewApp creates a fully wired App for the given user identity.
func NewApp(cfg *config.Config, identity string) (*App, error) {
	return newApp(cfg, identity, fs.NewOSFileOps(), save.RealClock{})
}

func newApp(cfg *config.Config, identity string, files save.FileOps, clock save.Clock) (*App, error) {
	if identity == "" {
		return nil, fmt.Errorf("no user identity")
	}

	store, err := history.NewStoreFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if err := store.CheckMigrations(); err != nil {
		store.Close()
		return nil, fmt.Errorf("history database schema out of date: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	usersRoot := cfg.UsersRoot
	if usersRoot == "" {
		usersRoot = DefaultUsersRoot
	}
	resolver := save.Resolver{UsersRoot: usersRoot, AppDir: cfg.BaseDir}
	locs := resolver.Resolve(identity, cfg.SaveFolder)
	logger.Info("locations resolved",
		"identity", identity,
		"main_save", locs.MainSave,
		"game_backups", locs.RemoteBackupDir,
		"local_backups", locs.LocalBackupDir)

	return &App{
		cfg:      cfg,
		identity: identity,
		manager:  save.NewManager(locs, files, &slogAdapter{l: logger}, clock),
		history:  store,
		logger:   logger,
		logFile:  logFile,
	}, nil
}

// Identity returns the user the locations were resolved for.
func (a *App) Identity() string {
	return a.identity
}

// Config returns the configuration the App was built from.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Locations returns the resolved save and backup paths.
func (a *App) Locations() save.LocationSet {
	return a.manager.Locations()
}

// MainSaveExists reports whether the main save file is present.
func (a *App) MainSaveExists() bool {
	return a.manager.MainSaveExists()
}

// ListBackups returns every backup in the game and local directories,
// newest first. Unreadable directories are reported in Listing.Diagnostics.
func (a *App) ListBackups() save.Listing {
	return a.manager.ListBackups()
}

// Restore replaces the main save with the backup named filename.
func (a *App) Restore(filename string) save.Outcome {
	return a.track(OpRestore, filename, func() save.Outcome {
		rec, err := a.manager.FindBackup(filename)
		if err != nil {
			if f, ok := err.(*save.Failure); ok {
				return f
			}
			return save.NewFailure(OpRestore, "could not look up backup", filename, err)
		}
		return a.manager.Restore(rec)
	})
}

// CreateLocalBackup copies the main save into the local backup directory.
func (a *App) CreateLocalBackup() save.Outcome {
	return a.track(OpBackup, "", a.manager.CreateLocalBackup)
}

// History returns the most recent recorded operations, newest first.
func (a *App) History(limit int) ([]*history.Operation, error) {
	return a.history.List(limit)
}

// Interrupted returns operations a previous run started but never finished.
// An interrupted restore may have left the main save deleted.
func (a *App) Interrupted() ([]*history.Operation, error) {
	return a.history.Unfinished()
}

// AcknowledgeInterrupted closes every unfinished history row as an error so
// later runs stop warning about it. It returns the number of rows closed.
func (a *App) AcknowledgeInterrupted() (int, error) {
	ops, err := a.history.Unfinished()
	if err != nil {
		return 0, err
	}
	for _, op := range ops {
		op.Status = history.StatusError
		op.Message = "interrupted before finishing"
		if err := a.history.Finish(op); err != nil {
			return 0, fmt.Errorf("acknowledging operation %d: %w", op.ID, err)
		}
		a.logger.Info("interrupted operation acknowledged", "id", op.ID, "operation", op.Operation)
	}
	return len(ops), nil
}

// Watch reports new backup files in the game and local backup directories
// until ctx is done. dirs receives the directories actually watched.
func (a *App) Watch(ctx context.Context, dirs func([]string), fn func(save.BackupRecord)) error {
	locs := a.Locations()
	w, err := watch.New(map[string]save.Source{
		locs.RemoteBackupDir: save.SourceGame,
		locs.LocalBackupDir:  save.SourceLocal,
	}, &slogAdapter{l: a.logger})
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	if dirs != nil {
		dirs(w.Dirs())
	}
	return w.Run(ctx, fn)
}

// Close closes the history database and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.history.Close(); err != nil {
		firstErr = fmt.Errorf("closing history database: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
