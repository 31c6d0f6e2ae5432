package fuel

import (
	"regexp"
	"strings"
)

var (
	// "FT-01 - FT-02 = 500 (FT09)": arrows surrounded by spaces allow hyphenated unit codes
	spacedTransferPattern = regexp.MustCompile(`^(\S+)\s+(?:->|-|>)\s+(\S+?)\s*=\s*([0-9.,]+)[^(]*(?:\(\s*([^)]*?)\s*\))?`)
	// "FT01-FT02=500"
	compactTransferPattern = regexp.MustCompile(`^([A-Za-z0-9_]+)\s*(?:->|-|>)\s*([A-Za-z0-9_]+)\s*=\s*([0-9.,]+)[^(]*(?:\(\s*([^)]*?)\s*\))?`)
)

// quantityAnnotations are parenthesized units of measure, not partner codes.
var quantityAnnotations = map[string]bool{
	"L":      true,
	"LT":     true,
	"LTR":    true,
	"LITER":  true,
	"LITRE":  true,
	"LITERS": true,
}

// ParseTransferLine reads "SOURCE - DESTINATION = AMOUNT (PARTNER)".
func ParseTransferLine(line string) (TransferRecord, bool) {
	line = strings.TrimSpace(line)
	m := spacedTransferPattern.FindStringSubmatch(line)
	if m == nil {
		m = compactTransferPattern.FindStringSubmatch(line)
	}
	if m == nil {
		return TransferRecord{}, false
	}

	tr := TransferRecord{
		Source:      NormalizeUnitID(m[1]),
		Destination: NormalizeUnitID(m[2]),
		Amount:      Normalize(m[3]),
	}
	if partner := NormalizeUnitID(m[4]); partner != "" && !quantityAnnotations[partner] {
		tr.Partner = partner
	}
	return tr, true
}

// Ledger applies transfers to unit records.
type Ledger struct {
	HubCode string
}

// Apply debits the source, then credits either the destination or, for
// hub transfers, a partner fill. The hub itself is never credited.
func (l Ledger) Apply(r *ParseResult, tr TransferRecord) {
	tr.Source = NormalizeUnitID(tr.Source)
	tr.Destination = NormalizeUnitID(tr.Destination)

	src := r.Unit(tr.Source)
	src.TransferOut = src.TransferOut.Add(tr.Amount)
	r.Transfers = append(r.Transfers, tr)

	if l.IsHub(tr.Destination) {
		r.PartnerFills = append(r.PartnerFills, PartnerFill{
			Unit:       tr.Partner,
			Amount:     tr.Amount,
			SourceUnit: tr.Source,
		})
		return
	}

	dst := r.Unit(tr.Destination)
	dst.TransferIn = dst.TransferIn.Add(tr.Amount)
}

// IsHub reports whether code is the configured hub
func (l Ledger) IsHub(code string) bool {
	return l.HubCode != "" && strings.EqualFold(strings.TrimSpace(code), l.HubCode)
}
