package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/fuelops/backend/internal/domain/fuel"
	"github.com/fuelops/backend/internal/infrastructure/persistence/models"
)

// GormCalibrationRepository reads and replaces tank calibration tables
type GormCalibrationRepository struct {
	db *gorm.DB
}

// NewGormCalibrationRepository creates a new GormCalibrationRepository
func NewGormCalibrationRepository(db *gorm.DB) *GormCalibrationRepository {
	return &GormCalibrationRepository{db: db}
}

var _ fuel.CalibrationRepository = (*GormCalibrationRepository)(nil)

// FindByUnits loads the calibration rows of all given units in one query
func (r *GormCalibrationRepository) FindByUnits(ctx context.Context, unitIDs []string) ([]fuel.CalibrationPoint, error) {
	ids := normalizeUnitIDs(unitIDs)
	if len(ids) == 0 {
		return []fuel.CalibrationPoint{}, nil
	}

	var rows []models.TeraTangkiModel
	if err := r.db.WithContext(ctx).
		Where("unit_id IN ?", ids).
		Order("unit_id, height_cm").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find calibration: %w", err)
	}

	points := make([]fuel.CalibrationPoint, len(rows))
	for i := range rows {
		points[i] = rows[i].ToDomain()
	}
	return points, nil
}

// ReplaceForUnits swaps the whole table of every unit present in points
func (r *GormCalibrationRepository) ReplaceForUnits(ctx context.Context, points []fuel.CalibrationPoint) error {
	if len(points) == 0 {
		return nil
	}

	rows := make([]*models.TeraTangkiModel, len(points))
	units := make([]string, 0)
	for i, p := range points {
		rows[i] = models.TeraTangkiModelFromDomain(p)
		units = append(units, rows[i].UnitID)
	}
	units = normalizeUnitIDs(units)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("unit_id IN ?", units).Delete(&models.TeraTangkiModel{}).Error; err != nil {
			return fmt.Errorf("clear calibration: %w", err)
		}
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("insert calibration: %w", err)
		}
		return nil
	})
}

// normalizeUnitIDs uppercases and de-duplicates, dropping empty ids
func normalizeUnitIDs(unitIDs []string) []string {
	seen := make(map[string]struct{}, len(unitIDs))
	ids := make([]string, 0, len(unitIDs))
	for _, id := range unitIDs {
		id = fuel.NormalizeUnitID(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
