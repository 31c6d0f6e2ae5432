package fuel

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func warningsOf(rec *Reconciliation, kind WarningKind) []Warning {
	var out []Warning
	for _, w := range rec.Warnings {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}

func TestReconcile_EndToEnd(t *testing.T) {
	parsed := NewParseResult()
	parsed.Header = ReportHeader{Date: "2024-05-01", Shift: 1}
	ft01 := parsed.Unit("FT01")
	ft01.SondingAwal = "100"
	ft01.SondingAkhir = "150"
	ft01.FlowAwal = Normalize("1000")
	ft01.FlowAkhir = Normalize("1600")
	ft01.Ritasi = Normalize("300")

	calibration := NewCalibrationSet([]CalibrationPoint{point("FT01", 100, 1000), point("FT01", 150, 1600)})

	rec := Reconcile(parsed, calibration, nil, DefaultPolicy())

	u, ok := rec.FindUnit("ft01")
	require.True(t, ok)
	assertDecimal(t, "1000", u.StockAwal)
	assertDecimal(t, "1600", u.StockAkhir)
	assertDecimal(t, "600", u.IssuingFlowmeter)
	assertDecimal(t, "-300", u.IssuingSonding)
	assert.True(t, u.NeedsReview)
	assert.Equal(t, 1, rec.Summary.ReviewCount)

	t.Run("input is left untouched", func(t *testing.T) {
		assert.True(t, ft01.StockAwal.IsZero())
		assert.True(t, ft01.IssuingSonding.IsZero())
		assert.False(t, ft01.NeedsReview)
	})
}

func TestReconcile_ConservationIdentity(t *testing.T) {
	parsed := NewParseResult()
	ledger := Ledger{HubCode: "WHBC"}

	for id, s := range map[string][2]string{"FT01": {"120,5", "101"}, "FT02": {"40", "77.25"}, "FT03": {"10", "10"}} {
		u := parsed.Unit(id)
		u.SondingAwal, u.SondingAkhir = s[0], s[1]
	}
	parsed.Unit("FT02").Ritasi = Normalize("1.250,5")
	for _, line := range []string{"FT01 - FT02 = 333,3", "FT02 - FT03 = 120", "FT03 - WHBC = 80 (MT01)"} {
		tr, ok := ParseTransferLine(line)
		require.True(t, ok)
		ledger.Apply(parsed, tr)
	}

	calibration := NewCalibrationSet([]CalibrationPoint{
		point("FT01", 0, 0), point("FT01", 200, 5000),
		point("FT02", 0, 0), point("FT02", 90, 2700),
		point("FT03", 0, 0), point("FT03", 30, 333),
	})

	rec := Reconcile(parsed, calibration, nil, DefaultPolicy())

	require.Len(t, rec.Units, 3)
	for _, u := range rec.Units {
		expected := u.StockAwal.Add(u.Ritasi).Add(u.TransferIn).Sub(u.TransferOut).Sub(u.StockAkhir)
		assert.True(t, expected.Equal(u.IssuingSonding), "unit %s: %s != %s", u.UnitID, expected, u.IssuingSonding)
	}

	ft03, _ := rec.FindUnit("FT03")
	assertDecimal(t, "120", ft03.TransferIn)
	assertDecimal(t, "80", ft03.TransferOut)
	assertDecimal(t, "80", rec.Summary.TotalPartnerFill)
	assertDecimal(t, "533.3", rec.Summary.TotalTransfer)
}

func TestReconcile_FlowmeterNetOfTransfers(t *testing.T) {
	parsed := NewParseResult()
	u := parsed.Unit("FT01")
	u.FlowAwal = Normalize("1000")
	u.FlowAkhir = Normalize("1600")
	u.TransferOut = Normalize("200")

	rec := Reconcile(parsed, nil, nil, DefaultPolicy())
	assertDecimal(t, "400", rec.Units[0].IssuingFlowmeter)

	parsed.Units[0].TransferOut = Normalize("700")
	rec = Reconcile(parsed, nil, nil, DefaultPolicy())
	assertDecimal(t, "0", rec.Units[0].IssuingFlowmeter)
}

func TestReconcile_CalibrationMiss(t *testing.T) {
	parsed := NewParseResult()
	a := parsed.Unit("FT01")
	a.SondingAwal, a.SondingAkhir = "100", "90"
	b := parsed.Unit("FT02")
	b.SondingAwal, b.SondingAkhir = "0", ""

	rec := Reconcile(parsed, CalibrationSet{}, nil, DefaultPolicy())

	misses := warningsOf(rec, WarningCalibrationMiss)
	require.Len(t, misses, 1)
	assert.Equal(t, "FT01", misses[0].UnitID)
	assert.True(t, rec.Units[0].StockAwal.IsZero())
	assert.True(t, rec.Units[0].StockAkhir.IsZero())
}

func TestReconcile_OutOfRangeWarning(t *testing.T) {
	parsed := NewParseResult()
	u := parsed.Unit("FT01")
	u.SondingAwal, u.SondingAkhir = "100", "180"

	calibration := NewCalibrationSet([]CalibrationPoint{point("FT01", 100, 1000), point("FT01", 150, 1500)})
	rec := Reconcile(parsed, calibration, nil, DefaultPolicy())

	out := warningsOf(rec, WarningOutOfRange)
	require.Len(t, out, 1)
	assertDecimal(t, "1800", rec.Units[0].StockAkhir)
}

func TestReconcile_WarehouseResolution(t *testing.T) {
	parsed := NewParseResult()
	parsed.Unit("FT01")
	parsed.Unit("TK-02")
	parsed.Unit("XX9")

	roster := map[string]string{"ft01": " OFT01 "}
	rec := Reconcile(parsed, nil, roster, DefaultPolicy())

	ft01, _ := rec.FindUnit("FT01")
	assert.Equal(t, "OFT01", ft01.WarehouseID)
	assert.False(t, ft01.IsStaticTank)

	tank, _ := rec.FindUnit("TK-02")
	assert.True(t, tank.IsStaticTank)
	assert.Empty(t, tank.WarehouseID)

	misses := warningsOf(rec, WarningRosterMiss)
	require.Len(t, misses, 1)
	assert.Equal(t, "XX9", misses[0].UnitID)
}

func TestReconcile_Summary(t *testing.T) {
	parsed := NewParseResult()
	add := func(id, status, flowAwal, flowAkhir, ritasi, issuing string) {
		u := parsed.Unit(id)
		u.Status = status
		u.FlowAwal = Normalize(flowAwal)
		u.FlowAkhir = Normalize(flowAkhir)
		u.Ritasi = Normalize(ritasi)
		u.IssuingReport = Normalize(issuing)
	}
	add("FT01", "RFU", "1000", "1500", "200", "480")
	add("FT02", "rfu", "0", "0", "0", "0")
	add("ST01", "BD", "10", "60", "100", "50")
	add("FT03", "STANDBY", "500", "500", "0", "0")

	roster := map[string]string{"FT01": "OFT01", "FT02": "OFT02", "ST01": "OST01", "FT03": "OFT03"}
	rec := Reconcile(parsed, nil, roster, DefaultPolicy())

	s := rec.Summary
	assert.Equal(t, 4, s.UnitCount)
	assert.Equal(t, 2, s.RFUCount)
	assert.Equal(t, 1, s.OperatingFleetCount)
	assert.Equal(t, 1, s.OperatingSkidTankCount)
	assertDecimal(t, "550", s.TotalUsageFlow)
	assertDecimal(t, "530", s.TotalUsageReport)
	assertDecimal(t, "300", s.TotalFuelIn)
	assertDecimal(t, "0", s.TotalStock)
}

func TestReconcile_ReviewThreshold(t *testing.T) {
	parsed := NewParseResult()
	parsed.Unit("FT01").Ritasi = Normalize("10")
	parsed.Unit("FT02").Ritasi = Normalize("10,5")

	rec := Reconcile(parsed, nil, nil, DefaultPolicy())
	assert.False(t, rec.Units[0].NeedsReview)
	assert.True(t, rec.Units[1].NeedsReview)

	policy := DefaultPolicy()
	policy.ReviewThreshold = decimal.NewFromInt(20)
	rec = Reconcile(parsed, nil, nil, policy)
	assert.Equal(t, 0, rec.Summary.ReviewCount)
}

func TestPolicy_IsStaticTank(t *testing.T) {
	p := DefaultPolicy()
	assert.True(t, p.IsStaticTank("TK01"))
	assert.True(t, p.IsStaticTank("tank_3"))
	assert.False(t, p.IsStaticTank("FT01"))

	p.StaticTankPattern = nil
	assert.False(t, p.IsStaticTank("TK01"))
}
