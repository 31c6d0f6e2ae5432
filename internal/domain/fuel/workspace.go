package fuel

import (
	"context"
	"time"
)

// Workspace is the in-progress state of one report: the pasted text and
// the latest parse and reconciliation of it. A re-process replaces it whole.
type Workspace struct {
	ID          string          `json:"id"`
	Text        string          `json:"text"`
	Parsed      *ParseResult    `json:"parsed"`
	Result      *Reconciliation `json:"result"`
	Issues      []Issue         `json:"issues"`
	UpdatedAt   time.Time       `json:"updated_at"`
	SubmittedAt *time.Time      `json:"submitted_at,omitempty"`
}

// Header returns the header of the last parse, or an empty header
func (w *Workspace) Header() ReportHeader {
	if w == nil || w.Parsed == nil {
		return ReportHeader{}
	}
	return w.Parsed.Header
}

// WorkspaceStore keeps workspaces between requests.
// Get returns ErrWorkspaceNotFound for unknown or expired ids.
type WorkspaceStore interface {
	Get(ctx context.Context, id string) (*Workspace, error)
	Put(ctx context.Context, ws *Workspace) error
	Delete(ctx context.Context, id string) error
}
