// Package export writes reconciled reports as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/fuelops/backend/internal/domain/fuel"
)

const (
	unitsSheet   = "Units"
	summarySheet = "Summary"
)

var unitColumns = []string{
	"Unit", "Warehouse", "Sonding Awal (cm)", "Sonding Akhir (cm)",
	"Stock Awal", "Stock Akhir", "Ritasi", "Transfer In", "Transfer Out",
	"Flow Awal", "Flow Akhir", "Issuing Report", "Issuing Flowmeter", "Issuing Sonding",
	"Status", "Lokasi", "Static Tank", "Needs Review",
}

// XLSXExporter renders a reconciliation as an xlsx workbook
type XLSXExporter struct{}

// NewXLSXExporter creates a new XLSXExporter
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// ContentType is the MIME type of the produced file
func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write writes the Units and Summary sheets to w
func (e *XLSXExporter) Write(rec *fuel.Reconciliation, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), unitsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	if err := writeUnits(f, rec); err != nil {
		return err
	}
	if err := writeSummary(f, rec); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeUnits(f *excelize.File, rec *fuel.Reconciliation) error {
	if err := writeRow(f, unitsSheet, 1, toAny(unitColumns)); err != nil {
		return err
	}
	if err := f.SetPanes(unitsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	for i, u := range rec.Units {
		row := []any{
			u.UnitID,
			u.WarehouseID,
			number(fuel.ParseHeight(u.SondingAwal)),
			number(fuel.ParseHeight(u.SondingAkhir)),
			number(u.StockAwal),
			number(u.StockAkhir),
			number(u.Ritasi),
			number(u.TransferIn),
			number(u.TransferOut),
			number(u.FlowAwal),
			number(u.FlowAkhir),
			number(u.IssuingReport),
			number(u.IssuingFlowmeter),
			number(u.IssuingSonding),
			u.Status,
			u.Lokasi,
			yesNo(u.IsStaticTank),
			yesNo(u.NeedsReview),
		}
		if err := writeRow(f, unitsSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, rec *fuel.Reconciliation) error {
	s := rec.Summary
	rows := [][]any{
		{"Date", rec.Header.Date},
		{"Shift", rec.Header.Shift},
		{"Units", s.UnitCount},
		{"Total Stock", number(s.TotalStock)},
		{"Total Usage (Flowmeter)", number(s.TotalUsageFlow)},
		{"Total Usage (Report)", number(s.TotalUsageReport)},
		{"Total Fuel In", number(s.TotalFuelIn)},
		{"Total Transfer", number(s.TotalTransfer)},
		{"Total Partner Fill", number(s.TotalPartnerFill)},
		{"RFU", s.RFUCount},
		{"Operating Fleet", s.OperatingFleetCount},
		{"Operating Skid Tank", s.OperatingSkidTankCount},
		{"Needs Review", s.ReviewCount},
	}
	for i, row := range rows {
		if err := writeRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// number keeps integers integral so the sheet shows 1500 rather than 1500.0
func number(d decimal.Decimal) any {
	if d.Equal(d.Truncate(0)) {
		return d.IntPart()
	}
	return d.InexactFloat64()
}

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
