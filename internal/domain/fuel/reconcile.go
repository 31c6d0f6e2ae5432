package fuel

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Policy carries the site conventions the calculator depends on.
type Policy struct {
	HubCode           string
	MobileFleetPrefix string
	SkidTankPrefix    string
	StaticTankPattern *regexp.Regexp
	ReviewThreshold   decimal.Decimal
}

// DefaultPolicy returns the conventions used when nothing is configured
func DefaultPolicy() Policy {
	return Policy{
		HubCode:           "WHBC",
		MobileFleetPrefix: "OFT",
		SkidTankPrefix:    "OST",
		StaticTankPattern: regexp.MustCompile(`^(TK|TANK)[-_]?\d*`),
		ReviewThreshold:   decimal.NewFromInt(10),
	}
}

// IsStaticTank reports whether a unit code follows the fixed ground tank naming.
func (p Policy) IsStaticTank(unitID string) bool {
	return p.StaticTankPattern != nil && p.StaticTankPattern.MatchString(NormalizeUnitID(unitID))
}

func (p Policy) hasPrefix(warehouseID, prefix string) bool {
	return prefix != "" && strings.HasPrefix(strings.ToUpper(warehouseID), strings.ToUpper(prefix))
}

// WarningKind classifies non-fatal reconciliation problems
type WarningKind string

const (
	WarningCalibrationMiss WarningKind = "CALIBRATION_MISS"
	WarningOutOfRange      WarningKind = "HEIGHT_OUT_OF_RANGE"
	WarningRosterMiss      WarningKind = "ROSTER_MISS"
)

// Warning is a degraded-but-continued condition for one unit.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	UnitID  string      `json:"unit_id"`
	Message string      `json:"message"`
}

// Summary holds fleet-wide figures over all finalized units.
type Summary struct {
	UnitCount              int             `json:"unit_count"`
	TotalStock             decimal.Decimal `json:"total_stock"`
	TotalUsageFlow         decimal.Decimal `json:"total_usage_flow"`
	TotalUsageReport       decimal.Decimal `json:"total_usage_report"`
	TotalFuelIn            decimal.Decimal `json:"total_fuel_in"`
	TotalTransfer          decimal.Decimal `json:"total_transfer"`
	TotalPartnerFill       decimal.Decimal `json:"total_partner_fill"`
	RFUCount               int             `json:"rfu_count"`
	OperatingFleetCount    int             `json:"operating_fleet_count"`
	OperatingSkidTankCount int             `json:"operating_skidtank_count"`
	ReviewCount            int             `json:"review_count"`
}

// Reconciliation is the finalized view of a report.
type Reconciliation struct {
	Header       ReportHeader        `json:"header"`
	Units        []*UnitRecord       `json:"units"`
	Transfers    []TransferRecord    `json:"transfers"`
	PartnerFills []PartnerFill       `json:"partner_fills"`
	Filters      []FilterReplacement `json:"filters"`
	Notes        []string            `json:"notes"`
	Summary      Summary             `json:"summary"`
	Warnings     []Warning           `json:"warnings"`
}

// Reconcile computes stock, usage estimates and the fleet summary.
// The parse result is left untouched. roster maps unit id to warehouse code.
func Reconcile(result *ParseResult, calibration CalibrationSet, roster map[string]string, policy Policy) *Reconciliation {
	parsed := result.Clone()
	rec := &Reconciliation{
		Header:       parsed.Header,
		Units:        parsed.Units,
		Transfers:    parsed.Transfers,
		PartnerFills: parsed.PartnerFills,
		Filters:      parsed.Filters,
		Notes:        parsed.Notes,
		Warnings:     make([]Warning, 0),
	}

	warehouses := make(map[string]string, len(roster))
	for unit, wh := range roster {
		warehouses[NormalizeUnitID(unit)] = strings.TrimSpace(wh)
	}

	for _, u := range rec.Units {
		resolveWarehouse(u, warehouses, policy, rec)

		table := calibration.Table(u.UnitID)
		missed := false
		u.StockAwal = stockAt(table, u, u.SondingAwal, &missed, rec)
		u.StockAkhir = stockAt(table, u, u.SondingAkhir, &missed, rec)

		flow := u.FlowAkhir.Sub(u.FlowAwal).Sub(u.TransferOut)
		u.IssuingFlowmeter = decimal.Max(decimal.Zero, flow)

		u.IssuingSonding = u.StockAwal.
			Add(u.Ritasi).
			Add(u.TransferIn).
			Sub(u.TransferOut).
			Sub(u.StockAkhir)

		u.NeedsReview = u.IssuingSonding.Abs().GreaterThan(policy.ReviewThreshold)
	}

	rec.Summary = summarize(rec, policy)
	return rec
}

func resolveWarehouse(u *UnitRecord, roster map[string]string, policy Policy, rec *Reconciliation) {
	if wh := roster[u.UnitID]; wh != "" {
		u.WarehouseID = wh
		u.IsStaticTank = false
		return
	}
	if policy.IsStaticTank(u.UnitID) {
		u.IsStaticTank = true
		return
	}
	if u.WarehouseID == "" {
		rec.Warnings = append(rec.Warnings, Warning{
			Kind:    WarningRosterMiss,
			UnitID:  u.UnitID,
			Message: fmt.Sprintf("unit %s has no warehouse in the roster", u.UnitID),
		})
	}
}

func stockAt(table TeraTable, u *UnitRecord, raw string, missed *bool, rec *Reconciliation) decimal.Decimal {
	height := ParseHeight(raw)
	if !height.IsPositive() {
		return decimal.Zero
	}

	vol, ok := table.VolumeAt(height)
	if !ok {
		if !*missed {
			*missed = true
			rec.Warnings = append(rec.Warnings, Warning{
				Kind:    WarningCalibrationMiss,
				UnitID:  u.UnitID,
				Message: fmt.Sprintf("no calibration rows for unit %s", u.UnitID),
			})
		}
		return decimal.Zero
	}
	if vol.OutOfRange {
		rec.Warnings = append(rec.Warnings, Warning{
			Kind:    WarningOutOfRange,
			UnitID:  u.UnitID,
			Message: fmt.Sprintf("height %s cm is outside the calibrated range of unit %s", height.String(), u.UnitID),
		})
	}
	return vol.Liters
}

func summarize(rec *Reconciliation, policy Policy) Summary {
	s := Summary{
		UnitCount:        len(rec.Units),
		TotalStock:       decimal.Zero,
		TotalUsageFlow:   decimal.Zero,
		TotalUsageReport: decimal.Zero,
		TotalFuelIn:      decimal.Zero,
		TotalTransfer:    decimal.Zero,
		TotalPartnerFill: decimal.Zero,
	}

	for _, u := range rec.Units {
		s.TotalStock = s.TotalStock.Add(u.StockAkhir)
		s.TotalUsageFlow = s.TotalUsageFlow.Add(u.IssuingFlowmeter)
		s.TotalUsageReport = s.TotalUsageReport.Add(u.IssuingReport)
		s.TotalFuelIn = s.TotalFuelIn.Add(u.Ritasi)

		if strings.Contains(strings.ToUpper(u.Status), "RFU") {
			s.RFUCount++
		}
		if u.NeedsReview {
			s.ReviewCount++
		}
		if u.IssuingFlowmeter.IsPositive() {
			switch {
			case policy.hasPrefix(u.WarehouseID, policy.MobileFleetPrefix):
				s.OperatingFleetCount++
			case policy.hasPrefix(u.WarehouseID, policy.SkidTankPrefix):
				s.OperatingSkidTankCount++
			}
		}
	}

	for _, t := range rec.Transfers {
		s.TotalTransfer = s.TotalTransfer.Add(t.Amount)
	}
	for _, f := range rec.PartnerFills {
		s.TotalPartnerFill = s.TotalPartnerFill.Add(f.Amount)
	}

	return s
}

// FindUnit returns the finalized record of a unit
func (r *Reconciliation) FindUnit(id string) (*UnitRecord, bool) {
	id = NormalizeUnitID(id)
	for _, u := range r.Units {
		if u.UnitID == id {
			return u, true
		}
	}
	return nil, false
}
