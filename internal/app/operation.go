package app

import (
	"scumgenics/internal/history"
	"scumgenics/internal/save"
)

// Operation names recorded in the history database.
const (
	OpRestore = "restore"
	OpBackup  = "backup"
)

// track records a running history row, runs fn, and finishes the row with
// fn's outcome. History failures are logged and never change the outcome.
func (a *App) track(operation, parameters string, fn func() save.Outcome) save.Outcome {
	op, err := a.history.Start(operation, parameters)
	if err != nil {
		a.logger.Warn("could not record operation start", "operation", operation, "error", err)
	}

	out := fn()

	if op != nil {
		applyOutcome(op, out)
		if err := a.history.Finish(op); err != nil {
			a.logger.Warn("could not record operation result", "operation", operation, "id", op.ID, "error", err)
		}
	}
	return out
}

// applyOutcome copies the result of an operation onto its history row.
func applyOutcome(op *history.Operation, out save.Outcome) {
	switch o := out.(type) {
	case save.Success:
		op.Status = history.StatusSuccess
		op.Kind = ""
		op.Path = o.Path
		op.Message = o.Message
		op.Degraded = false
	case *save.Failure:
		op.Status = history.StatusError
		op.Kind = o.Kind.String()
		op.Path = o.Path
		op.Message = o.Message
		op.Degraded = o.Degraded
	}
}
