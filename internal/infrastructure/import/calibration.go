package csvimport

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fuelops/backend/internal/domain/fuel"
)

// Calibration columns. warehouse_id is accepted in place of unit_id.
const (
	ColumnUnitID      = "unit_id"
	ColumnWarehouseID = "warehouse_id"
	ColumnHeight      = "height_cm"
	ColumnQty         = "qty_liter"
)

// MaxCalibrationErrors bounds how many row errors are reported
const MaxCalibrationErrors = 50

// ParseCalibration reads tera rows. Points are returned only when the
// collection is empty; a file with any bad row is rejected as a whole.
func ParseCalibration(r io.Reader, opts ...ParserOption) ([]fuel.CalibrationPoint, *ErrorCollection) {
	errs := NewErrorCollection(MaxCalibrationErrors)

	parser, err := NewCSVParser(r, opts...)
	if err != nil {
		errs.AddFileError(ErrCodeImportInvalidFile, err)
		return nil, errs
	}
	if err := parser.ParseHeader(); err != nil {
		errs.AddFileError(ErrCodeImportMissingHeader, err)
		return nil, errs
	}

	unitColumn := ColumnUnitID
	if !parser.HasHeader(ColumnUnitID) && parser.HasHeader(ColumnWarehouseID) {
		unitColumn = ColumnWarehouseID
	}
	var missing []string
	for _, h := range []string{unitColumn, ColumnHeight, ColumnQty} {
		if !parser.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		errs.AddFileError(ErrCodeImportMissingHeader,
			fmt.Errorf("missing required columns: %s", strings.Join(missing, ", ")))
		return nil, errs
	}

	points := make([]fuel.CalibrationPoint, 0)
	seen := make(map[string]int)

	for {
		row, err := parser.ReadRow()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errs.Add(RowError{Row: parser.CurrentRow(), Code: ErrCodeImportCSVParsing, Message: err.Error()})
			continue
		}
		if row.IsEmpty() {
			continue
		}

		p, ok := parseCalibrationRow(row, unitColumn, errs)
		if !ok {
			continue
		}

		key := p.UnitID + "|" + p.HeightCM.String()
		if first, dup := seen[key]; dup {
			errs.AddDuplicateError(row.LineNumber, ColumnHeight, row.Get(ColumnHeight), first)
			continue
		}
		seen[key] = row.LineNumber
		points = append(points, p)
	}

	if errs.HasErrors() {
		return nil, errs
	}
	if len(points) == 0 {
		errs.AddFileError(ErrCodeImportNoData, errors.New("CSV file contains no data rows"))
		return nil, errs
	}
	return points, errs
}

func parseCalibrationRow(row *Row, unitColumn string, errs *ErrorCollection) (fuel.CalibrationPoint, bool) {
	ok := true

	unit := fuel.NormalizeUnitID(row.Get(unitColumn))
	if unit == "" {
		errs.AddRequiredError(row.LineNumber, unitColumn)
		ok = false
	}

	rawHeight := row.Get(ColumnHeight)
	height := fuel.ParseHeight(rawHeight)
	switch {
	case rawHeight == "":
		errs.AddRequiredError(row.LineNumber, ColumnHeight)
		ok = false
	case !containsDigit(rawHeight):
		errs.AddTypeError(row.LineNumber, ColumnHeight, "number", rawHeight)
		ok = false
	case height.IsNegative():
		errs.AddRangeError(row.LineNumber, ColumnHeight, "height cannot be negative", rawHeight)
		ok = false
	}

	rawQty := row.Get(ColumnQty)
	qty := fuel.Normalize(rawQty)
	switch {
	case rawQty == "":
		errs.AddRequiredError(row.LineNumber, ColumnQty)
		ok = false
	case !containsDigit(rawQty):
		errs.AddTypeError(row.LineNumber, ColumnQty, "number", rawQty)
		ok = false
	case qty.IsNegative():
		errs.AddRangeError(row.LineNumber, ColumnQty, "volume cannot be negative", rawQty)
		ok = false
	}

	return fuel.CalibrationPoint{UnitID: unit, HeightCM: height, QtyLiter: qty}, ok
}

func containsDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}
