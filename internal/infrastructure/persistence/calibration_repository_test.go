package persistence

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelops/backend/internal/domain/fuel"
	"github.com/fuelops/backend/internal/infrastructure/persistence/models"
)

func calibrationPoint(unit string, height, liters int64) fuel.CalibrationPoint {
	return fuel.CalibrationPoint{
		UnitID:   unit,
		HeightCM: decimal.NewFromInt(height),
		QtyLiter: decimal.NewFromInt(liters),
	}
}

func TestGormCalibrationRepository_FindByUnits(t *testing.T) {
	db := setupFuelTestDB(t)
	repo := NewGormCalibrationRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceForUnits(ctx, []fuel.CalibrationPoint{
		calibrationPoint("FT01", 200, 2000),
		calibrationPoint("FT01", 100, 1000),
		calibrationPoint("FT02", 50, 400),
		calibrationPoint("TK01", 10, 5000),
	}))

	t.Run("loads only the requested units", func(t *testing.T) {
		points, err := repo.FindByUnits(ctx, []string{"ft01", "FT02", "FT01"})
		require.NoError(t, err)
		require.Len(t, points, 3)

		set := fuel.NewCalibrationSet(points)
		assert.Equal(t, 2, set.Table("FT01").Len())
		assert.Equal(t, 1, set.Table("FT02").Len())
		assert.Equal(t, 0, set.Table("TK01").Len())
	})

	t.Run("empty input does not query", func(t *testing.T) {
		points, err := repo.FindByUnits(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, points)
	})

	t.Run("unknown units yield nothing", func(t *testing.T) {
		points, err := repo.FindByUnits(ctx, []string{"NOPE"})
		require.NoError(t, err)
		assert.Empty(t, points)
	})
}

func TestGormCalibrationRepository_ReplaceForUnits(t *testing.T) {
	db := setupFuelTestDB(t)
	repo := NewGormCalibrationRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceForUnits(ctx, []fuel.CalibrationPoint{
		calibrationPoint("FT01", 100, 1000),
		calibrationPoint("FT01", 200, 2000),
		calibrationPoint("FT02", 100, 900),
	}))

	// new FT01 table, FT02 untouched
	require.NoError(t, repo.ReplaceForUnits(ctx, []fuel.CalibrationPoint{
		calibrationPoint("ft01", 100, 1100),
	}))

	var count int64
	require.NoError(t, db.Model(&models.TeraTangkiModel{}).Where("unit_id = ?", "FT01").Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&models.TeraTangkiModel{}).Where("unit_id = ?", "FT02").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	points, err := repo.FindByUnits(ctx, []string{"FT01"})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.True(t, points[0].QtyLiter.Equal(decimal.NewFromInt(1100)))
}

func TestGormCalibrationRepository_ReplaceRejectsDuplicateHeights(t *testing.T) {
	db := setupFuelTestDB(t)
	repo := NewGormCalibrationRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceForUnits(ctx, []fuel.CalibrationPoint{
		calibrationPoint("FT01", 100, 1000),
	}))

	err := repo.ReplaceForUnits(ctx, []fuel.CalibrationPoint{
		calibrationPoint("FT01", 150, 1500),
		calibrationPoint("FT01", 150, 1600),
	})
	require.Error(t, err)

	// the failed replacement rolled back, the old table survives
	points, err := repo.FindByUnits(ctx, []string{"FT01"})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.True(t, points[0].HeightCM.Equal(decimal.NewFromInt(100)))
}

func TestNormalizeUnitIDs(t *testing.T) {
	assert.Equal(t, []string{"FT01", "FT02"}, normalizeUnitIDs([]string{" ft01", "", "FT02", "FT01"}))
	assert.Empty(t, normalizeUnitIDs(nil))
}
