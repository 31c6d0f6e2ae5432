package fuelreport

import (
	"context"
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/fuelops/backend/internal/domain/fuel"
	csvimport "github.com/fuelops/backend/internal/infrastructure/import"
	"github.com/fuelops/backend/internal/infrastructure/logger"
)

// CalibrationImportResult summarizes a tera upload
type CalibrationImportResult struct {
	Units       []string             `json:"units"`
	Rows        int                  `json:"rows"`
	Errors      []csvimport.RowError `json:"errors,omitempty"`
	TotalErrors int                  `json:"total_errors,omitempty"`
}

// ImportCalibration replaces the tera tables of every unit in the CSV.
// A file with any invalid row changes nothing; the result then lists the
// row errors and fuel.ErrInvalidCalibration is returned.
func (s *Service) ImportCalibration(ctx context.Context, r io.Reader) (*CalibrationImportResult, error) {
	log := logger.Enrich(ctx, s.logger)

	points, errs := csvimport.ParseCalibration(r)
	if errs.HasErrors() {
		log.Info("Calibration upload rejected", zap.Int("errors", errs.TotalCount()))
		return &CalibrationImportResult{
			Units:       []string{},
			Errors:      errs.Errors(),
			TotalErrors: errs.TotalCount(),
		}, fuel.ErrInvalidCalibration
	}

	if err := s.calibration.ReplaceForUnits(ctx, points); err != nil {
		return nil, fmt.Errorf("store calibration: %w", err)
	}

	units := make([]string, 0)
	for unit := range fuel.NewCalibrationSet(points) {
		units = append(units, unit)
	}
	sort.Strings(units)

	log.Info("Calibration imported", zap.Strings("units", units), zap.Int("rows", len(points)))
	return &CalibrationImportResult{Units: units, Rows: len(points)}, nil
}
