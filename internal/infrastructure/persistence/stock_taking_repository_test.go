package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelops/backend/internal/domain/fuel"
	"github.com/fuelops/backend/internal/infrastructure/persistence/models"
)

func submissionRow(unit string, qty, usage int64) fuel.SubmissionRow {
	key := fuel.CompositeKey("2024-05-01", 2, unit)
	return fuel.SubmissionRow{
		ID:           fuel.RowID(key),
		CompositeKey: key,
		ReportDate:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		WorkingShift: 2,
		UnitID:       unit,
		WarehouseID:  "OFT" + unit[len(unit)-2:],
		HeightCM:     decimal.NewFromInt(120),
		QtyLiter:     decimal.NewFromInt(qty),
		FuelUsage:    decimal.NewFromInt(usage),
	}
}

func TestGormStockSubmissionRepository_UpsertBatch(t *testing.T) {
	db := setupFuelTestDB(t)
	repo := NewGormStockSubmissionRepository(db)
	ctx := context.Background()

	t.Run("inserts one row per unit", func(t *testing.T) {
		err := repo.UpsertBatch(ctx, []fuel.SubmissionRow{
			submissionRow("FT01", 1000, 300),
			submissionRow("FT02", 2000, 400),
		})
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&models.StockTakingModel{}).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})

	t.Run("resubmission updates in place", func(t *testing.T) {
		err := repo.UpsertBatch(ctx, []fuel.SubmissionRow{
			submissionRow("FT01", 1500, 350),
			submissionRow("FT02", 2000, 400),
		})
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&models.StockTakingModel{}).Count(&count).Error)
		assert.Equal(t, int64(2), count)

		var stored models.StockTakingModel
		require.NoError(t, db.Where("composite_key = ?", fuel.CompositeKey("2024-05-01", 2, "FT01")).First(&stored).Error)
		assert.True(t, stored.QtyLiter.Equal(decimal.NewFromInt(1500)), "qty %s", stored.QtyLiter)
		assert.True(t, stored.FuelUsage.Equal(decimal.NewFromInt(350)), "usage %s", stored.FuelUsage)
		assert.Equal(t, fuel.RowID(stored.CompositeKey), stored.ID)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.UpsertBatch(ctx, nil))
	})
}

func TestGormStockSubmissionRepository_RollsBackOnFailure(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	repo := NewGormStockSubmissionRepository(db.DB)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "stock_taking"`).
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	err := repo.UpsertBatch(context.Background(), []fuel.SubmissionRow{
		submissionRow("FT01", 1000, 300),
		submissionRow("FT02", 2000, 400),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadlock detected")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStockSubmissionRepository_UpsertStatement(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	repo := NewGormStockSubmissionRepository(db.DB)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "stock_taking" .* ON CONFLICT \("composite_key"\) DO UPDATE SET .*"qty_liter"="excluded"\."qty_liter"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpsertBatch(context.Background(), []fuel.SubmissionRow{submissionRow("FT01", 1000, 300)})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
