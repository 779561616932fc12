package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"scumgenics/internal/history"
	"scumgenics/internal/save"
)

// errReported marks a failure whose details were already printed.
var errReported = errors.New("operation failed")

// printOutcome writes a success message to out or a failure report to errOut.
// It returns errReported for failures so the command exits non-zero.
func printOutcome(out, errOut io.Writer, o save.Outcome) error {
	switch v := o.(type) {
	case save.Success:
		fmt.Fprintln(out, v.Message)
		return nil
	case *save.Failure:
		fmt.Fprint(errOut, v.Report())
		return errReported
	default:
		return fmt.Errorf("unexpected outcome %T", o)
	}
}

// printListing writes one line per backup, newest first, followed by any
// directories that could not be read.
func printListing(out, errOut io.Writer, l save.Listing, showPaths bool) {
	if len(l.Records) == 0 {
		fmt.Fprintln(out, "No backups found.")
	}
	for _, r := range l.Records {
		loc := r.Name
		if showPaths {
			loc = r.Path
		}
		fmt.Fprintf(out, "%s  [%-5s]  %s\n", r.DisplayName(), r.Source, loc)
	}
	for _, d := range l.Diagnostics {
		fmt.Fprintf(errOut, "warning: %v\n", d)
	}
}

// printHistory writes one line per recorded operation.
func printHistory(out io.Writer, ops []*history.Operation) {
	if len(ops) == 0 {
		fmt.Fprintln(out, "No operations recorded.")
		return
	}
	for _, op := range ops {
		duration := ""
		if op.FinishedAt.Valid {
			duration = op.FinishedAt.Time.Sub(op.StartedAt).Truncate(time.Millisecond).String()
		}
		status := op.Status
		if op.Degraded {
			status += " (degraded)"
		}
		fmt.Fprintf(out, "#%d  %-8s  %s  %-18s  %-8s  %s\n",
			op.ID,
			op.Operation,
			op.StartedAt.Local().Format("2006-01-02 15:04:05"),
			status,
			duration,
			op.Parameters,
		)
	}
}

// printInterrupted warns about operations a previous run never finished.
// An interrupted restore may have deleted the main save, so it is followed
// by the steps to put the backup in place by hand.
func printInterrupted(errOut io.Writer, ops []*history.Operation, locs save.LocationSet) {
	for _, op := range ops {
		fmt.Fprintf(errOut, "WARNING: %s #%d started %s never finished.\n",
			op.Operation, op.ID, op.StartedAt.Local().Format("2006-01-02 15:04:05"))
		if op.Operation != "restore" {
			continue
		}
		name := strings.TrimSpace(op.Parameters)
		fmt.Fprintf(errOut, "  If %s is missing, put the backup in place by hand:\n", locs.MainSave)
		fmt.Fprintf(errOut, "    copy %s\n", filepath.Join(locs.RemoteBackupDir, name))
		fmt.Fprintf(errOut, "      or %s\n", filepath.Join(locs.LocalBackupDir, name))
		fmt.Fprintf(errOut, "    to   %s\n", locs.MainSave)
		fmt.Fprintf(errOut, "  If %s exists, rename it to %s instead.\n",
			filepath.Join(locs.Base, name), filepath.Base(locs.MainSave))
		fmt.Fprintln(errOut, "  Then run: scumgenics status --ack")
	}
}
