package reporttext

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/fuelops/backend/internal/domain/fuel"
)

// Render writes the canonical share text for a reconciled report.
// Numbers use Indonesian grouping, so Parse reads the output back to the
// same values.
func Render(rec *fuel.Reconciliation) string {
	p := message.NewPrinter(language.Indonesian)
	var b strings.Builder

	line := func(format string, args ...any) {
		b.WriteString(p.Sprintf(format, args...))
		b.WriteByte('\n')
	}

	line("*REPORT DAILY FAO*")
	line("*TANGGAL : %s*", displayDate(rec.Header.Date))
	if rec.Header.Shift > 0 {
		line("*SHIFT : %d*", rec.Header.Shift)
	} else {
		line("*SHIFT : -*")
	}

	b.WriteByte('\n')
	line("*ISSUING OUT (LITER)*")
	for _, u := range rec.Units {
		if !u.IssuingReport.IsZero() {
			// ungrouped: a trailing ".ddd" would read back as a decimal fragment
			line("%s = %s", u.UnitID, u.IssuingReport.Truncate(0).String())
		}
	}
	line("*TOTAL FUEL OUT = %s (LITER)*", liters(p, rec.Summary.TotalUsageReport))

	b.WriteByte('\n')
	line("*RITASI (LITER)*")
	for _, u := range rec.Units {
		if !u.Ritasi.IsZero() {
			line("%s = %s", u.UnitID, liters(p, u.Ritasi))
		}
	}
	line("*TOTAL FUEL IN = %s LITER*", liters(p, rec.Summary.TotalFuelIn))

	if len(rec.Transfers) > 0 {
		b.WriteByte('\n')
		line("*WAREHOUSE TRANSFER*")
		for _, t := range rec.Transfers {
			annotation := "LTR"
			if t.Partner != "" {
				annotation = t.Partner
			}
			line("%s > %s = %s (%s)", t.Source, t.Destination, liters(p, t.Amount), annotation)
		}
	}

	b.WriteByte('\n')
	line("*READINESS FT*")
	for _, u := range rec.Units {
		switch {
		case u.Status == "":
		case u.Lokasi != "":
			line("%s = %s (%s)", u.UnitID, u.Status, u.Lokasi)
		default:
			line("%s = %s", u.UnitID, u.Status)
		}
	}
	line("*TOTAL FT RFU : %d UNIT*", rec.Summary.RFUCount)

	b.WriteByte('\n')
	line("*SONDING AWAL - AKHIR (CM)*")
	for _, u := range rec.Units {
		if u.HasSonding() {
			line("%s = %s - %s", u.UnitID, orDash(u.SondingAwal), orDash(u.SondingAkhir))
		}
	}

	b.WriteByte('\n')
	line("*FLOWMETER AWAL - AKHIR*")
	for _, u := range rec.Units {
		if u.HasFlowmeter() {
			line("%s = %s-%s", u.UnitID, liters(p, u.FlowAwal), liters(p, u.FlowAkhir))
		}
	}

	if len(rec.Filters) > 0 {
		b.WriteByte('\n')
		line("*PENGGANTIAN FILTER*")
		for _, f := range rec.Filters {
			if f.Date != "" {
				line("%s = %s *%s", f.Unit, f.Status, f.Date)
			} else {
				line("%s = %s", f.Unit, f.Status)
			}
		}
	}

	if len(rec.Notes) > 0 {
		b.WriteByte('\n')
		line("*NOTE :*")
		for _, n := range rec.Notes {
			line("- %s", n)
		}
	}

	return b.String()
}

// liters formats with dot grouping and at most two comma decimals.
func liters(p *message.Printer, d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return p.Sprintf("%d", d.IntPart())
	}
	return p.Sprintf("%v", number.Decimal(d.Round(2).InexactFloat64(), number.MaxFractionDigits(2)))
}

func displayDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return "-"
	}
	return t.Format("02/01/2006")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
