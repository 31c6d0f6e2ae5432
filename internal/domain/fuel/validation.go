package fuel

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Issue codes raised by Validate
const (
	IssueNegativeFlow            = "NEGATIVE_FLOW"
	IssueExcessiveFlow           = "EXCESSIVE_FLOW"
	IssueMissingSonding          = "MISSING_SONDING"
	IssueBreakdownNoLocation     = "BREAKDOWN_WITHOUT_LOCATION"
	IssueNonPositiveTransfer     = "NON_POSITIVE_TRANSFER"
	IssueUnattributedPartnerFill = "UNATTRIBUTED_PARTNER_FILL"
	IssueSondingDeviation        = "SONDING_DEVIATION"
)

var maxFlowmeterDelta = decimal.NewFromInt(100000)

// Issue is a finding an operator should look at before submitting.
// Issues never block processing.
type Issue struct {
	Code    string `json:"code"`
	UnitID  string `json:"unit_id,omitempty"`
	Message string `json:"message"`
}

// Validate checks a reconciliation for readings that are likely typos.
func Validate(rec *Reconciliation) []Issue {
	issues := make([]Issue, 0)
	add := func(code, unit, format string, args ...any) {
		issues = append(issues, Issue{Code: code, UnitID: unit, Message: fmt.Sprintf(format, args...)})
	}

	for _, u := range rec.Units {
		if u.HasFlowmeter() {
			delta := u.FlowAkhir.Sub(u.FlowAwal)
			switch {
			case delta.IsNegative():
				add(IssueNegativeFlow, u.UnitID, "flowmeter of %s runs backwards (%s to %s)", u.UnitID, u.FlowAwal, u.FlowAkhir)
			case delta.GreaterThan(maxFlowmeterDelta):
				add(IssueExcessiveFlow, u.UnitID, "flowmeter of %s moved %s liters in one shift", u.UnitID, delta)
			}
			if !ParseHeight(u.SondingAwal).IsPositive() || !ParseHeight(u.SondingAkhir).IsPositive() {
				add(IssueMissingSonding, u.UnitID, "unit %s has flowmeter readings but no sonding", u.UnitID)
			}
		}
		if strings.EqualFold(strings.TrimSpace(u.Status), "BD") && u.Lokasi == "" {
			add(IssueBreakdownNoLocation, u.UnitID, "unit %s is BD without a location", u.UnitID)
		}
		if u.NeedsReview {
			add(IssueSondingDeviation, u.UnitID, "sonding usage of %s is %s liters", u.UnitID, u.IssuingSonding)
		}
	}

	for _, t := range rec.Transfers {
		if !t.Amount.IsPositive() {
			add(IssueNonPositiveTransfer, t.Source, "transfer %s to %s has no quantity", t.Source, t.Destination)
		}
	}
	for _, f := range rec.PartnerFills {
		if f.Unit == "" {
			add(IssueUnattributedPartnerFill, f.SourceUnit, "hub transfer of %s liters from %s names no partner unit", f.Amount, f.SourceUnit)
		}
	}

	return issues
}
