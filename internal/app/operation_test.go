package app

import (
	"testing"

	"scumgenics/internal/history"
	"scumgenics/internal/save"
)

func TestApplyOutcome(t *testing.T) {
	tests := []struct {
		name         string
		out          save.Outcome
		wantStatus   string
		wantKind     string
		wantPath     string
		wantDegraded bool
	}{
		{
			name:       "success",
			out:        save.Success{Message: "done", Path: "/saves/steamcampaign01.sav"},
			wantStatus: history.StatusSuccess,
			wantPath:   "/saves/steamcampaign01.sav",
		},
		{
			name: "precondition failure",
			out: &save.Failure{
				Op: "restore", Kind: save.KindPreconditionFailed,
				Message: "main save file not found", Path: "/saves/steamcampaign01.sav",
			},
			wantStatus: history.StatusError,
			wantKind:   "precondition failed",
			wantPath:   "/saves/steamcampaign01.sav",
		},
		{
			name: "degraded failure",
			out: &save.Failure{
				Op: "restore", Kind: save.KindIOError, Degraded: true,
				Message: "copy failed", Path: "/saves/backups/a.savbackup",
			},
			wantStatus:   history.StatusError,
			wantKind:     "I/O error",
			wantPath:     "/saves/backups/a.savbackup",
			wantDegraded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := &history.Operation{Status: history.StatusRunning}
			applyOutcome(op, tt.out)

			if op.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", op.Status, tt.wantStatus)
			}
			if op.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", op.Kind, tt.wantKind)
			}
			if op.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", op.Path, tt.wantPath)
			}
			if op.Degraded != tt.wantDegraded {
				t.Errorf("Degraded = %v, want %v", op.Degraded, tt.wantDegraded)
			}
		})
	}
}
