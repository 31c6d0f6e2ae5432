package fuelreport

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fuelops/backend/internal/domain/fuel"
	"github.com/fuelops/backend/internal/infrastructure/logger"
)

// SubmitResult describes a committed submission
type SubmitResult struct {
	WorkspaceID string           `json:"workspace_id"`
	ReportDate  string           `json:"report_date"`
	Shift       int              `json:"shift"`
	Source      fuel.UsageSource `json:"fuel_usage_source"`
	Rows        int              `json:"rows"`
	Cleared     bool             `json:"cleared"`
}

// Submit stores one stock row per unit of the workspace, with warehouses
// taken from the roster as it stands now. The batch is all-or-nothing; on
// failure (roster included) the workspace is left untouched and a
// *fuel.SubmissionError is returned. An empty source selects the default.
func (s *Service) Submit(ctx context.Context, workspaceID string, source string) (*SubmitResult, error) {
	ctx = logger.WithWorkspaceID(ctx, workspaceID)
	log := logger.Enrich(ctx, s.logger)

	src := s.defaultSource
	if source != "" {
		parsed, err := fuel.ParseUsageSource(source)
		if err != nil {
			return nil, err
		}
		src = parsed
	}

	ws, err := s.processed(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	rows, err := fuel.BuildSubmission(ws.Result, src)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.UnitID
	}

	start := s.now()
	roster, err := s.roster.FindWarehouses(ctx, ids)
	if err != nil {
		err = fmt.Errorf("load roster: %w", err)
	} else {
		fuel.AssignWarehouses(rows, roster)
		err = s.submissions.UpsertBatch(ctx, rows)
	}
	s.recorder.RecordSubmission(err, len(rows), s.now().Sub(start))
	if err != nil {
		log.Error("Stock submission failed",
			zap.String("date", ws.Result.Header.Date),
			zap.Int("shift", ws.Result.Header.Shift),
			zap.Int("rows", len(rows)),
			zap.Error(err),
		)
		return nil, &fuel.SubmissionError{Rows: len(rows), Err: err}
	}

	result := &SubmitResult{
		WorkspaceID: workspaceID,
		ReportDate:  ws.Result.Header.Date,
		Shift:       ws.Result.Header.Shift,
		Source:      src,
		Rows:        len(rows),
	}

	if s.clearAfterSubmit {
		if err := s.workspaces.Delete(ctx, workspaceID); err != nil {
			log.Warn("Failed to clear submitted workspace", zap.Error(err))
		} else {
			result.Cleared = true
		}
	} else {
		submittedAt := s.now()
		ws.SubmittedAt = &submittedAt
		if err := s.workspaces.Put(ctx, ws); err != nil {
			log.Warn("Failed to mark workspace as submitted", zap.Error(err))
		}
	}

	log.Info("Stock submitted",
		zap.String("date", result.ReportDate),
		zap.Int("shift", result.Shift),
		zap.String("source", string(src)),
		zap.Int("rows", result.Rows),
	)
	return result, nil
}
