package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fuelops/backend/internal/domain/fuel"
	"github.com/fuelops/backend/internal/infrastructure/persistence/models"
)

// GormStockSubmissionRepository writes stock readings into stock_taking
type GormStockSubmissionRepository struct {
	db *gorm.DB
}

// NewGormStockSubmissionRepository creates a new GormStockSubmissionRepository
func NewGormStockSubmissionRepository(db *gorm.DB) *GormStockSubmissionRepository {
	return &GormStockSubmissionRepository{db: db}
}

var _ fuel.SubmissionRepository = (*GormStockSubmissionRepository)(nil)

// UpsertBatch stores all rows in one transaction. A row whose composite key
// already exists is updated in place, so resubmitting a report is safe.
func (r *GormStockSubmissionRepository) UpsertBatch(ctx context.Context, rows []fuel.SubmissionRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch := make([]*models.StockTakingModel, len(rows))
	for i, row := range rows {
		batch[i] = models.StockTakingModelFromDomain(row)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "composite_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"report_date",
				"working_shift",
				"unit_id",
				"warehouse_id",
				"height_cm",
				"qty_liter",
				"fuel_usage",
				"updated_at",
			}),
		}).Create(&batch).Error
		if err != nil {
			return fmt.Errorf("upsert stock taking: %w", err)
		}
		return nil
	})
}
