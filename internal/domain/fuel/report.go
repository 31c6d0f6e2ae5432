package fuel

import (
	"github.com/shopspring/decimal"
)

// ReportHeader identifies the reporting day and shift.
type ReportHeader struct {
	Date  string `json:"date"` // ISO yyyy-mm-dd
	Shift int    `json:"shift"`
}

// IsComplete reports whether both date and shift are known
func (h ReportHeader) IsComplete() bool {
	return h.Date != "" && h.Shift > 0
}

// UnitRecord accumulates everything a report says about one unit.
// Sonding readings are kept as the raw height text; the derived
// fields are filled in by Reconcile.
type UnitRecord struct {
	UnitID       string `json:"unit_id"`
	WarehouseID  string `json:"warehouse_id"`
	SondingAwal  string `json:"sonding_awal"`
	SondingAkhir string `json:"sonding_akhir"`

	StockAwal  decimal.Decimal `json:"stock_awal"`
	StockAkhir decimal.Decimal `json:"stock_akhir"`
	Ritasi     decimal.Decimal `json:"ritasi"`
	FlowAwal   decimal.Decimal `json:"flow_awal"`
	FlowAkhir  decimal.Decimal `json:"flow_akhir"`

	IssuingReport    decimal.Decimal `json:"issuing_report"`
	IssuingFlowmeter decimal.Decimal `json:"issuing_flowmeter"`
	IssuingSonding   decimal.Decimal `json:"issuing_sonding"`

	TransferIn  decimal.Decimal `json:"transfer_in"`
	TransferOut decimal.Decimal `json:"transfer_out"`

	Status       string `json:"status"`
	Lokasi       string `json:"lokasi"`
	IsStaticTank bool   `json:"is_static_tank"`
	NeedsReview  bool   `json:"needs_review"`
}

func newUnitRecord(id string) *UnitRecord {
	return &UnitRecord{
		UnitID:           id,
		StockAwal:        decimal.Zero,
		StockAkhir:       decimal.Zero,
		Ritasi:           decimal.Zero,
		FlowAwal:         decimal.Zero,
		FlowAkhir:        decimal.Zero,
		IssuingReport:    decimal.Zero,
		IssuingFlowmeter: decimal.Zero,
		IssuingSonding:   decimal.Zero,
		TransferIn:       decimal.Zero,
		TransferOut:      decimal.Zero,
	}
}

// HasFlowmeter reports whether any flowmeter reading was given
func (u *UnitRecord) HasFlowmeter() bool {
	return !u.FlowAwal.IsZero() || !u.FlowAkhir.IsZero()
}

// HasSonding reports whether any dipstick reading was given
func (u *UnitRecord) HasSonding() bool {
	return u.SondingAwal != "" || u.SondingAkhir != ""
}

// TransferRecord is one parsed warehouse transfer line.
type TransferRecord struct {
	Source      string          `json:"source"`
	Destination string          `json:"destination"`
	Amount      decimal.Decimal `json:"amount"`
	Partner     string          `json:"partner,omitempty"`
}

// PartnerFill is a transfer routed through the hub to a partner's unit.
type PartnerFill struct {
	Unit       string          `json:"unit"`
	Amount     decimal.Decimal `json:"amount"`
	SourceUnit string          `json:"source_unit"`
}

// FilterReplacement is informational and takes no part in reconciliation.
type FilterReplacement struct {
	Unit   string `json:"unit"`
	Status string `json:"status"`
	Date   string `json:"date,omitempty"`
}

// ParseResult is everything extracted from one report text.
type ParseResult struct {
	Header       ReportHeader        `json:"header"`
	Units        []*UnitRecord       `json:"units"`
	Transfers    []TransferRecord    `json:"transfers"`
	PartnerFills []PartnerFill       `json:"partner_fills"`
	Filters      []FilterReplacement `json:"filters"`
	Notes        []string            `json:"notes"`
	// Skipped counts lines inside recognized sections that matched no pattern.
	Skipped int `json:"skipped"`

	index map[string]int
}

// NewParseResult creates an empty result
func NewParseResult() *ParseResult {
	return &ParseResult{
		Units:        make([]*UnitRecord, 0),
		Transfers:    make([]TransferRecord, 0),
		PartnerFills: make([]PartnerFill, 0),
		Filters:      make([]FilterReplacement, 0),
		Notes:        make([]string, 0),
		index:        make(map[string]int),
	}
}

// Unit returns the record for id, creating it on first reference.
func (r *ParseResult) Unit(id string) *UnitRecord {
	id = NormalizeUnitID(id)
	if u, ok := r.Lookup(id); ok {
		return u
	}
	u := newUnitRecord(id)
	r.index[id] = len(r.Units)
	r.Units = append(r.Units, u)
	return u
}

// Lookup returns the record for id without creating it
func (r *ParseResult) Lookup(id string) (*UnitRecord, bool) {
	r.ensureIndex()
	i, ok := r.index[NormalizeUnitID(id)]
	if !ok {
		return nil, false
	}
	return r.Units[i], true
}

// UnitIDs lists unit ids in first-reference order
func (r *ParseResult) UnitIDs() []string {
	ids := make([]string, len(r.Units))
	for i, u := range r.Units {
		ids[i] = u.UnitID
	}
	return ids
}

// Clone returns a deep copy.
func (r *ParseResult) Clone() *ParseResult {
	c := &ParseResult{
		Header:       r.Header,
		Units:        make([]*UnitRecord, len(r.Units)),
		Transfers:    append(make([]TransferRecord, 0, len(r.Transfers)), r.Transfers...),
		PartnerFills: append(make([]PartnerFill, 0, len(r.PartnerFills)), r.PartnerFills...),
		Filters:      append(make([]FilterReplacement, 0, len(r.Filters)), r.Filters...),
		Notes:        append(make([]string, 0, len(r.Notes)), r.Notes...),
		Skipped:      r.Skipped,
	}
	for i, u := range r.Units {
		cp := *u
		c.Units[i] = &cp
	}
	return c
}

// ensureIndex rebuilds the lookup index, which is lost after JSON decoding.
func (r *ParseResult) ensureIndex() {
	if r.index != nil && len(r.index) == len(r.Units) {
		return
	}
	r.index = make(map[string]int, len(r.Units))
	for i, u := range r.Units {
		r.index[u.UnitID] = i
	}
}
