package save

import "io/fs"

// FileOps wraps the primitive file actions the manager is built from.
// No method panics or returns a raw OS error: every failure comes back as a
// classified *Failure naming the path involved.
type FileOps interface {
	// Delete removes a regular file. Deleting an absent file is a NotFound
	// failure, not a success; callers rely on that to detect broken preconditions.
	Delete(path string) Outcome

	// Copy copies source to destination, replacing any existing destination.
	// A partially written destination is never left behind.
	Copy(source, destination string) Outcome

	// Rename moves oldPath to newPath. It fails with Conflict if newPath exists.
	Rename(oldPath, newPath string) Outcome

	// EnsureDirectory creates path and its parents if needed.
	EnsureDirectory(path string) Outcome

	// Exists reports whether path is an accessible regular file.
	// Any error reads as false.
	Exists(path string) bool

	// Readable verifies that path can be opened and read.
	Readable(path string) Outcome

	// List returns the entries of dir. The error, when non-nil, is a *Failure.
	List(dir string) ([]fs.DirEntry, error)
}
