package fs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"scumgenics/internal/save"
)

// OSFileOps is the real filesystem implementation of save.FileOps.
type OSFileOps struct {
	// remove deletes partial files after a failed copy. nil means os.Remove.
	remove func(string) error
}

// NewOSFileOps creates file operations that act on the real filesystem.
func NewOSFileOps() *OSFileOps {
	return &OSFileOps{}
}

// Delete removes a regular file.
func (o *OSFileOps) Delete(path string) save.Outcome {
	info, err := os.Lstat(path)
	if err != nil {
		return save.NewFailure("delete", "cannot delete file", path, err)
	}
	if info.IsDir() {
		return &save.Failure{Op: "delete", Kind: save.KindIOError, Message: "path is a directory", Path: path}
	}
	if err := os.Remove(path); err != nil {
		return save.NewFailure("delete", "cannot delete file", path, err)
	}
	return save.Success{Message: fmt.Sprintf("File deleted successfully: %s", path), Path: path}
}

// Copy copies source to destination through a temp file in the destination
// directory, then renames it into place.
func (o *OSFileOps) Copy(source, destination string) save.Outcome {
	src, err := os.Open(source)
	if err != nil {
		return save.NewFailure("copy", "cannot open source file", source, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return save.NewFailure("copy", "cannot stat source file", source, err)
	}
	if !info.Mode().IsRegular() {
		return &save.Failure{Op: "copy", Kind: save.KindIOError, Message: "source is not a regular file", Path: source}
	}

	return o.copyFrom(src, info.Size(), info.Mode().Perm(), info.ModTime(), destination)
}

// copyFrom writes size bytes from src to a temp file beside destination,
// applies mode and mtime, and renames it into place. On failure the temp
// file is removed; a failed removal is attached as Cleanup.
func (o *OSFileOps) copyFrom(src io.Reader, size int64, mode fs.FileMode, mtime time.Time, destination string) save.Outcome {
	tmp, err := os.CreateTemp(filepath.Dir(destination), ".tmp-*")
	if err != nil {
		return save.NewFailure("copy", "cannot create destination file", destination, err)
	}
	tmpPath := tmp.Name()

	remove := o.remove
	if remove == nil {
		remove = os.Remove
	}
	fail := func(message string, err error) save.Outcome {
		f := save.NewFailure("copy", message, destination, err)
		if rmErr := remove(tmpPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			f.Cleanup = fmt.Errorf("removing partial file %s: %w", tmpPath, rmErr)
		}
		return f
	}

	written, err := io.Copy(tmp, src)
	if err != nil {
		tmp.Close()
		return fail("cannot write destination file", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fail("cannot flush destination file", err)
	}
	if err := tmp.Close(); err != nil {
		return fail("cannot close destination file", err)
	}
	if written != size {
		return fail("short copy", fmt.Errorf("wrote %d of %d bytes", written, size))
	}

	// Mode and modification time follow the source.
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fail("cannot set file mode", err)
	}
	if err := os.Chtimes(tmpPath, mtime, mtime); err != nil {
		return fail("cannot set file times", err)
	}

	if err := os.Rename(tmpPath, destination); err != nil {
		return fail("cannot move file into place", err)
	}
	return save.Success{Message: fmt.Sprintf("File copied successfully: %s", destination), Path: destination}
}

// Rename moves oldPath to newPath, refusing to replace an existing file.
func (o *OSFileOps) Rename(oldPath, newPath string) save.Outcome {
	if _, err := os.Lstat(oldPath); err != nil {
		return save.NewFailure("rename", "cannot rename file", oldPath, err)
	}
	if _, err := os.Lstat(newPath); err == nil {
		return &save.Failure{Op: "rename", Kind: save.KindConflict, Message: "destination already exists", Path: newPath}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return save.NewFailure("rename", "cannot check destination", newPath, err)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return save.NewFailure("rename", "cannot rename file", oldPath, err)
	}
	return save.Success{Message: fmt.Sprintf("File renamed successfully: %s -> %s", oldPath, newPath), Path: newPath}
}

// EnsureDirectory creates path and any missing parents.
func (o *OSFileOps) EnsureDirectory(path string) save.Outcome {
	if err := os.MkdirAll(path, 0755); err != nil {
		return save.NewFailure("create directory", "cannot create directory", path, err)
	}
	return save.Success{Message: fmt.Sprintf("Directory ready: %s", path), Path: path}
}

// Exists reports whether path is an accessible regular file.
func (o *OSFileOps) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Readable opens path and reads a byte from it.
func (o *OSFileOps) Readable(path string) save.Outcome {
	f, err := os.Open(path)
	if err != nil {
		return save.NewFailure("read", "cannot open file", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return save.NewFailure("read", "cannot stat file", path, err)
	}
	if !info.Mode().IsRegular() {
		return &save.Failure{Op: "read", Kind: save.KindIOError, Message: "not a regular file", Path: path}
	}

	var b [1]byte
	if _, err := f.Read(b[:]); err != nil && !errors.Is(err, io.EOF) {
		return save.NewFailure("read", "cannot read file", path, err)
	}
	return save.Success{Message: fmt.Sprintf("File is readable: %s", path), Path: path}
}

// List returns the entries of dir.
func (o *OSFileOps) List(dir string) ([]fs.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, save.NewFailure("list", "cannot read directory", dir, err)
	}
	return entries, nil
}

// Compile-time check that OSFileOps implements save.FileOps.
var _ save.FileOps = (*OSFileOps)(nil)
