package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/fuelops/backend/internal/domain/fuel"
	"github.com/fuelops/backend/internal/infrastructure/persistence/models"
)

// GormRosterRepository resolves units to warehouses from storage_units
type GormRosterRepository struct {
	db *gorm.DB
}

// NewGormRosterRepository creates a new GormRosterRepository
func NewGormRosterRepository(db *gorm.DB) *GormRosterRepository {
	return &GormRosterRepository{db: db}
}

var _ fuel.RosterRepository = (*GormRosterRepository)(nil)

// FindWarehouses maps each known active unit to its warehouse code.
// Unknown units are simply absent from the result.
func (r *GormRosterRepository) FindWarehouses(ctx context.Context, unitIDs []string) (map[string]string, error) {
	ids := normalizeUnitIDs(unitIDs)
	result := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []models.StorageUnitModel
	if err := r.db.WithContext(ctx).
		Where("unit_id IN ? AND active = ?", ids, true).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find roster: %w", err)
	}

	for _, row := range rows {
		result[fuel.NormalizeUnitID(row.UnitID)] = row.WarehouseID
	}
	return result, nil
}
