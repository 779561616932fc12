package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	osfs "scumgenics/internal/fs"
	"scumgenics/internal/save"
)

// FaultyFileOps wraps the real filesystem operations and fails chosen calls.
// A nil Fail* error lets the call through; a non-nil one makes the call
// return a failure classified from that error without touching the disk.
type FaultyFileOps struct {
	inner save.FileOps

	FailDelete error
	FailCopy   error
	FailRename error
	FailEnsure error
	FailList   error

	// Calls records every mutating call, e.g. "delete /x/a.sav".
	Calls []string
}

// NewFaultyFileOps creates a FaultyFileOps over the real filesystem.
func NewFaultyFileOps() *FaultyFileOps {
	return &FaultyFileOps{inner: osfs.NewOSFileOps()}
}

func (f *FaultyFileOps) Delete(path string) save.Outcome {
	f.Calls = append(f.Calls, "delete "+path)
	if f.FailDelete != nil {
		return save.NewFailure("delete", "cannot delete file", path, f.FailDelete)
	}
	return f.inner.Delete(path)
}

func (f *FaultyFileOps) Copy(source, destination string) save.Outcome {
	f.Calls = append(f.Calls, "copy "+source+" "+destination)
	if f.FailCopy != nil {
		return save.NewFailure("copy", "cannot write destination file", destination, f.FailCopy)
	}
	return f.inner.Copy(source, destination)
}

func (f *FaultyFileOps) Rename(oldPath, newPath string) save.Outcome {
	f.Calls = append(f.Calls, "rename "+oldPath+" "+newPath)
	if f.FailRename != nil {
		return save.NewFailure("rename", "cannot rename file", oldPath, f.FailRename)
	}
	return f.inner.Rename(oldPath, newPath)
}

func (f *FaultyFileOps) EnsureDirectory(path string) save.Outcome {
	f.Calls = append(f.Calls, "mkdir "+path)
	if f.FailEnsure != nil {
		return save.NewFailure("create directory", "cannot create directory", path, f.FailEnsure)
	}
	return f.inner.EnsureDirectory(path)
}

func (f *FaultyFileOps) Exists(path string) bool { return f.inner.Exists(path) }

func (f *FaultyFileOps) Readable(path string) save.Outcome { return f.inner.Readable(path) }

func (f *FaultyFileOps) List(dir string) ([]fs.DirEntry, error) {
	if f.FailList != nil {
		return nil, save.NewFailure("list", "cannot read directory", dir, f.FailList)
	}
	return f.inner.List(dir)
}

// Compile-time check
var _ save.FileOps = (*FaultyFileOps)(nil)

// Common injected errors.
var (
	ErrDiskFull     error = &fs.PathError{Op: "write", Path: "injected", Err: syscall.ENOSPC}
	ErrAccessDenied error = fs.ErrPermission
	ErrNotFound     error = fs.ErrNotExist
)

// SaveTree is a throwaway save layout rooted in a temp directory.
type SaveTree struct {
	Locations save.LocationSet
}

// NewSaveTree resolves a LocationSet for identity under a fresh temp
// directory. Nothing is created on disk.
func NewSaveTree(t *testing.T, identity string) *SaveTree {
	t.Helper()
	root := t.TempDir()
	r := save.Resolver{
		UsersRoot: filepath.Join(root, "Users"),
		AppDir:    filepath.Join(root, "app"),
	}
	return &SaveTree{Locations: r.Resolve(identity, "")}
}

// WriteMainSave writes the main save file, creating its directory.
func (s *SaveTree) WriteMainSave(t *testing.T, content string) {
	t.Helper()
	WriteFile(t, s.Locations.MainSave, content)
}

// WriteGameBackup writes a backup into the game's backup directory and
// returns its path.
func (s *SaveTree) WriteGameBackup(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(s.Locations.RemoteBackupDir, name)
	WriteFile(t, path, content)
	return path
}

// WriteLocalBackup writes a backup into the local backup directory and
// returns its path.
func (s *SaveTree) WriteLocalBackup(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(s.Locations.LocalBackupDir, name)
	WriteFile(t, path, content)
	return path
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// ReadFile returns the content of path, failing the test if it cannot be read.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}
