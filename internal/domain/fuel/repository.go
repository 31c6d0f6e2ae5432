package fuel

import "context"

// CalibrationRepository reads and maintains tera tables
type CalibrationRepository interface {
	// FindByUnits returns the calibration points of all given units in one read.
	FindByUnits(ctx context.Context, unitIDs []string) ([]CalibrationPoint, error)
	// ReplaceForUnits swaps the tables of every unit present in points.
	ReplaceForUnits(ctx context.Context, points []CalibrationPoint) error
}

// RosterRepository resolves units to their warehouse code
type RosterRepository interface {
	// FindWarehouses returns unit id -> warehouse code for known units only.
	FindWarehouses(ctx context.Context, unitIDs []string) (map[string]string, error)
}

// SubmissionRepository stores stock taking rows
type SubmissionRepository interface {
	// UpsertBatch writes all rows or none, keyed on CompositeKey.
	UpsertBatch(ctx context.Context, rows []SubmissionRow) error
}
