package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fuelops/backend/internal/domain/fuel"
)

// TeraTangkiModel is one calibration row of a tank
type TeraTangkiModel struct {
	ID       uint            `gorm:"primaryKey"`
	UnitID   string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_tera_tangki_unit_height"`
	HeightCM decimal.Decimal `gorm:"type:decimal(10,2);not null;uniqueIndex:idx_tera_tangki_unit_height"`
	QtyLiter decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName returns the table name for GORM
func (TeraTangkiModel) TableName() string {
	return "tera_tangki"
}

// ToDomain converts the row to a calibration point
func (m *TeraTangkiModel) ToDomain() fuel.CalibrationPoint {
	return fuel.CalibrationPoint{
		UnitID:   m.UnitID,
		HeightCM: m.HeightCM,
		QtyLiter: m.QtyLiter,
	}
}

// TeraTangkiModelFromDomain converts a calibration point to a row
func TeraTangkiModelFromDomain(p fuel.CalibrationPoint) *TeraTangkiModel {
	return &TeraTangkiModel{
		UnitID:   fuel.NormalizeUnitID(p.UnitID),
		HeightCM: p.HeightCM,
		QtyLiter: p.QtyLiter,
	}
}

// StorageUnitModel is the unit roster. Units missing here are either static
// tanks or unknown. A nil Active takes the column default (true).
type StorageUnitModel struct {
	UnitID      string `gorm:"type:varchar(50);primaryKey"`
	WarehouseID string `gorm:"type:varchar(50);not null;index"`
	UnitType    string `gorm:"type:varchar(30)"`
	Active      *bool  `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (StorageUnitModel) TableName() string {
	return "storage_units"
}

// StockTakingModel is one submitted stock reading
type StockTakingModel struct {
	BaseModel
	CompositeKey string          `gorm:"type:varchar(120);not null;uniqueIndex"`
	ReportDate   time.Time       `gorm:"type:date;not null;index"`
	WorkingShift int             `gorm:"not null"`
	UnitID       string          `gorm:"type:varchar(50);not null;index"`
	WarehouseID  string          `gorm:"type:varchar(50);not null"`
	HeightCM     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	QtyLiter     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	FuelUsage    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName returns the table name for GORM
func (StockTakingModel) TableName() string {
	return "stock_taking"
}

// StockTakingModelFromDomain converts a submission row
func StockTakingModelFromDomain(r fuel.SubmissionRow) *StockTakingModel {
	m := &StockTakingModel{
		CompositeKey: r.CompositeKey,
		ReportDate:   r.ReportDate,
		WorkingShift: r.WorkingShift,
		UnitID:       r.UnitID,
		WarehouseID:  r.WarehouseID,
		HeightCM:     r.HeightCM,
		QtyLiter:     r.QtyLiter,
		FuelUsage:    r.FuelUsage,
	}
	m.ID = r.ID
	return m
}

// ToDomain converts the row back to a submission row
func (m *StockTakingModel) ToDomain() fuel.SubmissionRow {
	return fuel.SubmissionRow{
		ID:           m.ID,
		CompositeKey: m.CompositeKey,
		ReportDate:   m.ReportDate,
		WorkingShift: m.WorkingShift,
		UnitID:       m.UnitID,
		WarehouseID:  m.WarehouseID,
		HeightCM:     m.HeightCM,
		QtyLiter:     m.QtyLiter,
		FuelUsage:    m.FuelUsage,
	}
}

// All lists every model for AutoMigrate
func All() []any {
	return []any{&TeraTangkiModel{}, &StorageUnitModel{}, &StockTakingModel{}}
}
