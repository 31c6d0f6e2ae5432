package fuelreport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fuelops/backend/internal/domain/fuel"
	"github.com/fuelops/backend/internal/infrastructure/cache"
)

// MockCalibrationRepository is a mock implementation of fuel.CalibrationRepository
type MockCalibrationRepository struct {
	mock.Mock
}

func (m *MockCalibrationRepository) FindByUnits(ctx context.Context, unitIDs []string) ([]fuel.CalibrationPoint, error) {
	args := m.Called(ctx, unitIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fuel.CalibrationPoint), args.Error(1)
}

func (m *MockCalibrationRepository) ReplaceForUnits(ctx context.Context, points []fuel.CalibrationPoint) error {
	args := m.Called(ctx, points)
	return args.Error(0)
}

// MockRosterRepository is a mock implementation of fuel.RosterRepository
type MockRosterRepository struct {
	mock.Mock
}

func (m *MockRosterRepository) FindWarehouses(ctx context.Context, unitIDs []string) (map[string]string, error) {
	args := m.Called(ctx, unitIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

// MockSubmissionRepository is a mock implementation of fuel.SubmissionRepository
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) UpsertBatch(ctx context.Context, rows []fuel.SubmissionRow) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

type recordedSubmission struct {
	err  error
	rows int
}

type fakeRecorder struct {
	reports     int
	submissions []recordedSubmission
}

func (r *fakeRecorder) RecordReport(*fuel.ParseResult, *fuel.Reconciliation) {
	r.reports++
}

func (r *fakeRecorder) RecordSubmission(err error, rows int, _ time.Duration) {
	r.submissions = append(r.submissions, recordedSubmission{err: err, rows: rows})
}

type fakeExporter struct{}

func (fakeExporter) Write(rec *fuel.Reconciliation, w io.Writer) error {
	_, err := io.WriteString(w, "units="+rec.Units[0].UnitID)
	return err
}

func (fakeExporter) ContentType() string { return "text/test" }

const report = `*TANGGAL : 01/05/2024*
*SHIFT : 1*

*RITASI*
FT01 = 500

*SONDING AWAL - AKHIR (CM)*
FT01 = 150 - 100
TK01 = 50 - 40

*FLOWMETER AWAL - AKHIR*
FT01 = 1.000-1.600
`

var fixedNow = time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)

func ft01Calibration() []fuel.CalibrationPoint {
	return []fuel.CalibrationPoint{
		{UnitID: "FT01", HeightCM: decimal.Zero, QtyLiter: decimal.Zero},
		{UnitID: "FT01", HeightCM: decimal.NewFromInt(200), QtyLiter: decimal.NewFromInt(2000)},
	}
}

type fixture struct {
	calibration *MockCalibrationRepository
	roster      *MockRosterRepository
	submissions *MockSubmissionRepository
	store       *cache.InMemoryWorkspaceStore
	recorder    *fakeRecorder
	service     *Service
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		calibration: new(MockCalibrationRepository),
		roster:      new(MockRosterRepository),
		submissions: new(MockSubmissionRepository),
		store:       cache.NewInMemoryWorkspaceStore(time.Hour),
		recorder:    &fakeRecorder{},
	}
	t.Cleanup(func() { _ = f.store.Close() })

	opts = append([]Option{
		WithRecorder(f.recorder),
		WithExporter(fakeExporter{}),
		WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	f.service = NewService(f.calibration, f.roster, f.submissions, f.store, opts...)
	return f
}

func (f *fixture) expectLookups() {
	f.calibration.On("FindByUnits", mock.Anything, []string{"FT01", "TK01"}).Return(ft01Calibration(), nil)
	f.roster.On("FindWarehouses", mock.Anything, []string{"FT01", "TK01"}).Return(map[string]string{"FT01": "OFT01"}, nil)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	want := decimal.RequireFromString(expected)
	assert.True(t, want.Equal(actual), "expected %s, got %s", want, actual)
}

func TestService_Process(t *testing.T) {
	f := newFixture(t)
	f.expectLookups()
	ctx := context.Background()

	ws, err := f.service.Process(ctx, "ws-1", report)
	require.NoError(t, err)

	assert.Equal(t, "ws-1", ws.ID)
	assert.Equal(t, fuel.ReportHeader{Date: "2024-05-01", Shift: 1}, ws.Result.Header)
	assert.Equal(t, fixedNow, ws.UpdatedAt)
	assert.Equal(t, 1, f.recorder.reports)

	ft01, ok := ws.Result.FindUnit("FT01")
	require.True(t, ok)
	assert.Equal(t, "OFT01", ft01.WarehouseID)
	assertDecimal(t, "1500", ft01.StockAwal)
	assertDecimal(t, "1000", ft01.StockAkhir)
	assertDecimal(t, "600", ft01.IssuingFlowmeter)
	assertDecimal(t, "1000", ft01.IssuingSonding)
	assert.True(t, ft01.NeedsReview)

	tk01, ok := ws.Result.FindUnit("TK01")
	require.True(t, ok)
	assert.True(t, tk01.IsStaticTank)

	require.Len(t, ws.Result.Warnings, 1)
	assert.Equal(t, fuel.WarningCalibrationMiss, ws.Result.Warnings[0].Kind)
	assert.Equal(t, "TK01", ws.Result.Warnings[0].UnitID)

	stored, err := f.store.Get(ctx, "ws-1")
	require.NoError(t, err)
	assert.Equal(t, report, stored.Text)
	assert.Len(t, stored.Result.Units, 2)

	f.calibration.AssertExpectations(t)
	f.roster.AssertExpectations(t)
}

func TestService_Process_CarriesPreviousHeader(t *testing.T) {
	f := newFixture(t)
	f.expectLookups()
	ctx := context.Background()

	_, err := f.service.Process(ctx, "ws-1", report)
	require.NoError(t, err)

	headerless := report[strings.Index(report, "*RITASI*"):]
	ws, err := f.service.Process(ctx, "ws-1", headerless)
	require.NoError(t, err)

	assert.Equal(t, fuel.ReportHeader{Date: "2024-05-01", Shift: 1}, ws.Header())
}

func TestService_Reconcile_CalibrationFailureDegrades(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := newFixture(t, WithLogger(zap.New(core)))

	f.calibration.On("FindByUnits", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))
	f.roster.On("FindWarehouses", mock.Anything, mock.Anything).Return(map[string]string{}, nil)

	ws, err := f.service.Analyze(context.Background(), report, fuel.ReportHeader{})
	require.NoError(t, err)

	for _, u := range ws.Result.Units {
		assert.True(t, u.StockAkhir.IsZero(), "unit %s", u.UnitID)
	}
	assert.Len(t, ws.Result.Warnings, 3, "two calibration misses and one roster miss")
	assert.Equal(t, 1, logs.FilterMessage("Calibration lookup failed, reconciling without tera tables").Len())
	assert.Equal(t, 2, logs.FilterMessage("Calibration miss").Len())
}

func TestService_Process_RosterFailureDegrades(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := newFixture(t, WithLogger(zap.New(core)))
	f.calibration.On("FindByUnits", mock.Anything, mock.Anything).Return(ft01Calibration(), nil)
	f.roster.On("FindWarehouses", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))
	ctx := context.Background()

	ws, err := f.service.Process(ctx, "ws-1", report)
	require.NoError(t, err)

	var misses []string
	for _, w := range ws.Result.Warnings {
		if w.Kind == fuel.WarningRosterMiss {
			misses = append(misses, w.UnitID)
		}
	}
	assert.Equal(t, []string{"FT01"}, misses, "static tanks need no roster entry")

	ft01, ok := ws.Result.FindUnit("FT01")
	require.True(t, ok)
	assert.Empty(t, ft01.WarehouseID)
	assertDecimal(t, "1000", ft01.StockAkhir)

	assert.Equal(t, 1, logs.FilterMessage("Roster lookup failed, reconciling without warehouses").Len())

	_, err = f.store.Get(ctx, "ws-1")
	assert.NoError(t, err)
}

func TestService_Analyze_EmptyText(t *testing.T) {
	f := newFixture(t)

	ws, err := f.service.Analyze(context.Background(), "", fuel.ReportHeader{})
	require.NoError(t, err)

	assert.Empty(t, ws.Result.Units)
	assert.Empty(t, ws.Issues)
	f.calibration.AssertNotCalled(t, "FindByUnits", mock.Anything, mock.Anything)
}

func TestService_Render(t *testing.T) {
	f := newFixture(t)
	f.expectLookups()
	ctx := context.Background()

	_, err := f.service.Render(ctx, "ws-1")
	assert.ErrorIs(t, err, fuel.ErrWorkspaceNotFound)

	_, err = f.service.Process(ctx, "ws-1", report)
	require.NoError(t, err)

	text, err := f.service.Render(ctx, "ws-1")
	require.NoError(t, err)
	assert.Contains(t, text, "01/05/2024")
	assert.Contains(t, text, "FT01 = 150 - 100")
}

func TestService_Export(t *testing.T) {
	f := newFixture(t)
	f.expectLookups()
	ctx := context.Background()

	_, err := f.service.Process(ctx, "ws-1", report)
	require.NoError(t, err)

	var buf bytes.Buffer
	header, err := f.service.Export(ctx, "ws-1", &buf)
	require.NoError(t, err)
	assert.Equal(t, fuel.ReportHeader{Date: "2024-05-01", Shift: 1}, header)
	assert.Equal(t, "units=FT01", buf.String())
	assert.Equal(t, "text/test", f.service.ExportContentType())
}

// countingStore counts workspace loads
type countingStore struct {
	*cache.InMemoryWorkspaceStore
	gets int
}

func (s *countingStore) Get(ctx context.Context, id string) (*fuel.Workspace, error) {
	s.gets++
	return s.InMemoryWorkspaceStore.Get(ctx, id)
}

func TestService_Export_LoadsWorkspaceOnce(t *testing.T) {
	f := newFixture(t)
	f.expectLookups()
	store := &countingStore{InMemoryWorkspaceStore: f.store}
	svc := NewService(f.calibration, f.roster, f.submissions, store, WithExporter(fakeExporter{}))
	ctx := context.Background()

	_, err := svc.Process(ctx, "ws-1", report)
	require.NoError(t, err)
	store.gets = 0

	var buf bytes.Buffer
	header, err := svc.Export(ctx, "ws-1", &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, store.gets)
	assert.True(t, header.IsComplete())

	_, err = svc.Export(ctx, "missing", &buf)
	assert.ErrorIs(t, err, fuel.ErrWorkspaceNotFound)
}

func TestService_NotProcessedWorkspace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Put(ctx, &fuel.Workspace{ID: "empty"}))

	_, err := f.service.Render(ctx, "empty")
	assert.ErrorIs(t, err, fuel.ErrNotProcessed)

	_, err = f.service.Submit(ctx, "empty", "")
	assert.ErrorIs(t, err, fuel.ErrNotProcessed)
}
