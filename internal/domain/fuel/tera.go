package fuel

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// CalibrationPoint is one row of a tank calibration (tera) table.
type CalibrationPoint struct {
	UnitID   string          `json:"unit_id"`
	HeightCM decimal.Decimal `json:"height_cm"`
	QtyLiter decimal.Decimal `json:"qty_liter"`
}

// Volume is the result of a height lookup.
type Volume struct {
	Liters decimal.Decimal
	// OutOfRange is set when the height lies outside the recorded heights
	// and the value was extrapolated from the first and last points.
	OutOfRange bool
}

// TeraTable maps dipstick heights to liquid volume for a single tank.
// Points are sorted ascending by height with duplicate heights removed.
type TeraTable struct {
	points []CalibrationPoint
}

// NewTeraTable builds a table from points in any order. For duplicate
// heights the first occurrence wins.
func NewTeraTable(points []CalibrationPoint) TeraTable {
	sorted := make([]CalibrationPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].HeightCM.LessThan(sorted[j].HeightCM)
	})

	deduped := make([]CalibrationPoint, 0, len(sorted))
	for _, p := range sorted {
		if n := len(deduped); n > 0 && deduped[n-1].HeightCM.Equal(p.HeightCM) {
			continue
		}
		deduped = append(deduped, p)
	}

	return TeraTable{points: deduped}
}

// Len returns the number of distinct heights in the table
func (t TeraTable) Len() int {
	return len(t.points)
}

// Points returns a copy of the sorted points
func (t TeraTable) Points() []CalibrationPoint {
	out := make([]CalibrationPoint, len(t.points))
	copy(out, t.points)
	return out
}

// VolumeAt converts a height in centimeters to liters by linear
// interpolation between the bracketing points, rounded to two decimals.
// ok is false when the table is empty.
func (t TeraTable) VolumeAt(height decimal.Decimal) (vol Volume, ok bool) {
	n := len(t.points)
	if n == 0 {
		return Volume{Liters: decimal.Zero}, false
	}

	first, last := t.points[0], t.points[n-1]
	lower, upper := first, last
	for i := 0; i < n-1; i++ {
		if height.GreaterThanOrEqual(t.points[i].HeightCM) && height.LessThanOrEqual(t.points[i+1].HeightCM) {
			lower, upper = t.points[i], t.points[i+1]
			break
		}
	}

	vol.OutOfRange = height.LessThan(first.HeightCM) || height.GreaterThan(last.HeightCM)

	if lower.HeightCM.Equal(upper.HeightCM) {
		vol.Liters = lower.QtyLiter
		return vol, true
	}

	ratio := height.Sub(lower.HeightCM).Div(upper.HeightCM.Sub(lower.HeightCM))
	vol.Liters = lower.QtyLiter.Add(ratio.Mul(upper.QtyLiter.Sub(lower.QtyLiter))).Round(2)
	return vol, true
}

// CalibrationSet holds the tera tables of several units keyed by unit id.
type CalibrationSet map[string]TeraTable

// NewCalibrationSet groups points by unit id.
func NewCalibrationSet(points []CalibrationPoint) CalibrationSet {
	grouped := make(map[string][]CalibrationPoint)
	for _, p := range points {
		id := NormalizeUnitID(p.UnitID)
		grouped[id] = append(grouped[id], p)
	}

	set := make(CalibrationSet, len(grouped))
	for id, pts := range grouped {
		set[id] = NewTeraTable(pts)
	}
	return set
}

// Table returns the table for a unit. A unit without calibration gets an empty table.
func (s CalibrationSet) Table(unitID string) TeraTable {
	if s == nil {
		return TeraTable{}
	}
	return s[NormalizeUnitID(unitID)]
}

// NormalizeUnitID canonicalizes a unit token.
func NormalizeUnitID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
