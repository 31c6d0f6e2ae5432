package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelops/backend/internal/infrastructure/persistence/models"
)

func TestGormRosterRepository_FindWarehouses(t *testing.T) {
	db := setupFuelTestDB(t)
	repo := NewGormRosterRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&[]models.StorageUnitModel{
		{UnitID: "FT01", WarehouseID: "OFT01", UnitType: "fuel_truck", Active: boolPtr(true)},
		{UnitID: "FT02", WarehouseID: "OST02", UnitType: "skid_tank"},
		{UnitID: "FT03", WarehouseID: "OFT03", UnitType: "fuel_truck", Active: boolPtr(false)},
	}).Error)

	t.Run("resolves known units case-insensitively", func(t *testing.T) {
		roster, err := repo.FindWarehouses(ctx, []string{"ft01", "FT02", "TK01"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"FT01": "OFT01", "FT02": "OST02"}, roster)
	})

	t.Run("unset active takes the column default", func(t *testing.T) {
		var row models.StorageUnitModel
		require.NoError(t, db.First(&row, "unit_id = ?", "FT02").Error)
		require.NotNil(t, row.Active)
		assert.True(t, *row.Active)
	})

	t.Run("inactive flag is stored as given", func(t *testing.T) {
		var row models.StorageUnitModel
		require.NoError(t, db.First(&row, "unit_id = ?", "FT03").Error)
		require.NotNil(t, row.Active)
		assert.False(t, *row.Active)
	})

	t.Run("inactive units are not resolved", func(t *testing.T) {
		roster, err := repo.FindWarehouses(ctx, []string{"FT03"})
		require.NoError(t, err)
		assert.Empty(t, roster)
	})

	t.Run("empty input returns an empty map", func(t *testing.T) {
		roster, err := repo.FindWarehouses(ctx, nil)
		require.NoError(t, err)
		assert.NotNil(t, roster)
		assert.Empty(t, roster)
	})
}

func boolPtr(b bool) *bool {
	return &b
}
