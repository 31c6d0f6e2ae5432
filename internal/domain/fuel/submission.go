package fuel

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UsageSource selects which estimate is stored as fuel usage.
type UsageSource string

const (
	UsageSourceFlowmeter UsageSource = "flowmeter"
	UsageSourceReport    UsageSource = "report"
)

// ParseUsageSource validates a usage source name
func ParseUsageSource(s string) (UsageSource, error) {
	switch UsageSource(strings.ToLower(strings.TrimSpace(s))) {
	case UsageSourceFlowmeter:
		return UsageSourceFlowmeter, nil
	case UsageSourceReport:
		return UsageSourceReport, nil
	default:
		return "", ErrInvalidUsageSource
	}
}

// stockTakingNamespace seeds the deterministic row ids.
var stockTakingNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("fuelops/stock_taking"))

// SubmissionRow is one stock_taking row. CompositeKey is the upsert key.
type SubmissionRow struct {
	ID           uuid.UUID
	CompositeKey string
	ReportDate   time.Time
	WorkingShift int
	UnitID       string
	WarehouseID  string
	HeightCM     decimal.Decimal
	QtyLiter     decimal.Decimal
	FuelUsage    decimal.Decimal
}

// CompositeKey identifies a unit's reading for a date and shift.
func CompositeKey(date string, shift int, unitID string) string {
	return fmt.Sprintf("%s|%d|%s", date, shift, NormalizeUnitID(unitID))
}

// RowID derives a stable uuid from the composite key
func RowID(compositeKey string) uuid.UUID {
	return uuid.NewSHA1(stockTakingNamespace, []byte(compositeKey))
}

// BuildSubmission produces one row per unit. Building the same report
// twice yields identical keys.
func BuildSubmission(rec *Reconciliation, source UsageSource) ([]SubmissionRow, error) {
	if _, err := ParseUsageSource(string(source)); err != nil {
		return nil, err
	}
	if !rec.Header.IsComplete() {
		return nil, ErrMissingHeader
	}
	date, err := time.Parse("2006-01-02", rec.Header.Date)
	if err != nil {
		return nil, ErrMissingHeader
	}
	if len(rec.Units) == 0 {
		return nil, ErrNothingToSubmit
	}

	rows := make([]SubmissionRow, 0, len(rec.Units))
	for _, u := range rec.Units {
		key := CompositeKey(rec.Header.Date, rec.Header.Shift, u.UnitID)

		usage := u.IssuingFlowmeter
		if source == UsageSourceReport {
			usage = u.IssuingReport
		}

		warehouse := u.WarehouseID
		if warehouse == "" {
			warehouse = u.UnitID
		}

		rows = append(rows, SubmissionRow{
			ID:           RowID(key),
			CompositeKey: key,
			ReportDate:   date,
			WorkingShift: rec.Header.Shift,
			UnitID:       u.UnitID,
			WarehouseID:  warehouse,
			HeightCM:     ParseHeight(u.SondingAkhir),
			QtyLiter:     u.StockAkhir,
			FuelUsage:    usage,
		})
	}
	return rows, nil
}

// AssignWarehouses overwrites row warehouses with current roster entries.
// Units absent from the roster keep what BuildSubmission gave them.
func AssignWarehouses(rows []SubmissionRow, roster map[string]string) {
	if len(roster) == 0 {
		return
	}
	warehouses := make(map[string]string, len(roster))
	for unit, wh := range roster {
		warehouses[NormalizeUnitID(unit)] = strings.TrimSpace(wh)
	}
	for i := range rows {
		if wh := warehouses[rows[i].UnitID]; wh != "" {
			rows[i].WarehouseID = wh
		}
	}
}
