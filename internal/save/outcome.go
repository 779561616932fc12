package save

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// Kind classifies why an operation failed.
type Kind int

const (
	// KindIOError covers environmental failures: disk full, lock contention, corruption.
	KindIOError Kind = iota
	KindNotFound
	KindAccessDenied
	// KindConflict means the destination already exists.
	KindConflict
	// KindPreconditionFailed means an invariant was violated before any mutation.
	KindPreconditionFailed
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAccessDenied:
		return "access denied"
	case KindIOError:
		return "I/O error"
	case KindConflict:
		return "conflict"
	case KindPreconditionFailed:
		return "precondition failed"
	default:
		return "unknown"
	}
}

// Classify maps an OS error onto a Kind.
func Classify(err error) Kind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindAccessDenied
	case errors.Is(err, fs.ErrExist):
		return KindConflict
	default:
		return KindIOError
	}
}

// Outcome is the result of every mutating operation. It is implemented only by
// Success and *Failure, so callers switch on the two arms:
//
//	switch o := out.(type) {
//	case save.Success:
//	case *save.Failure:
//	}
type Outcome interface {
	outcome()
}

// Success reports a completed operation.
type Success struct {
	Message string
	Path    string // the path the operation produced or touched
}

func (Success) outcome() {}

// Failure reports a failed operation. It always names the path that failed.
type Failure struct {
	Op      string // "delete", "copy", "restore", ...
	Kind    Kind
	Message string
	Path    string
	Err     error

	// Cleanup is set when removing a partial artifact also failed.
	Cleanup error

	// Degraded is set when the main save was deleted but its replacement did
	// not land under the canonical filename. Recovery then holds the manual steps.
	Degraded bool
	Recovery string
}

func (*Failure) outcome() {}

func (f *Failure) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s failed: %s", f.Op, f.Message)
	if f.Path != "" {
		fmt.Fprintf(&b, ": %s", f.Path)
	}
	if f.Err != nil {
		fmt.Fprintf(&b, ": %v", f.Err)
	}
	return b.String()
}

func (f *Failure) Unwrap() error { return f.Err }

// Report renders the failure for a person: operation, reason, path, and for
// degraded outcomes the manual recovery steps.
func (f *Failure) Report() string {
	var b strings.Builder
	title := f.Op
	if title != "" {
		title = strings.ToUpper(title[:1]) + title[1:]
	}
	fmt.Fprintf(&b, "%s failed: %s\n", title, f.Message)
	fmt.Fprintf(&b, "File: %s\n", f.Path)
	fmt.Fprintf(&b, "Reason: %s", f.Kind)
	if f.Err != nil {
		fmt.Fprintf(&b, " (%v)", f.Err)
	}
	b.WriteString("\n")
	if f.Cleanup != nil {
		fmt.Fprintf(&b, "Cleanup also failed: %v\n", f.Cleanup)
	}
	if f.Degraded {
		b.WriteString("WARNING: the main save was deleted and has not been replaced.\n")
	}
	if f.Recovery != "" {
		b.WriteString(f.Recovery)
		b.WriteString("\n")
	}
	return b.String()
}

// AsFailure returns the failure arm of an outcome.
func AsFailure(o Outcome) (*Failure, bool) {
	f, ok := o.(*Failure)
	return f, ok
}

// NewFailure builds a Failure whose Kind is classified from err.
func NewFailure(op, message, path string, err error) *Failure {
	return &Failure{Op: op, Kind: Classify(err), Message: message, Path: path, Err: err}
}
