// Package fuelreport coordinates parsing, reconciliation, review and
// submission of daily fuel reports.
package fuelreport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fuelops/backend/internal/domain/fuel"
	"github.com/fuelops/backend/internal/infrastructure/logger"
	"github.com/fuelops/backend/internal/infrastructure/reporttext"
)

// Exporter writes a reconciliation in a downloadable format
type Exporter interface {
	Write(rec *fuel.Reconciliation, w io.Writer) error
	ContentType() string
}

// Recorder receives processing and submission measurements
type Recorder interface {
	RecordReport(parsed *fuel.ParseResult, rec *fuel.Reconciliation)
	RecordSubmission(err error, rows int, elapsed time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) RecordReport(*fuel.ParseResult, *fuel.Reconciliation) {}
func (noopRecorder) RecordSubmission(error, int, time.Duration) {}

// Service is the fuel report use case entry point
type Service struct {
	calibration fuel.CalibrationRepository
	roster      fuel.RosterRepository
	submissions fuel.SubmissionRepository
	workspaces  fuel.WorkspaceStore

	policy           fuel.Policy
	defaultSource    fuel.UsageSource
	clearAfterSubmit bool

	logger   *zap.Logger
	recorder Recorder
	exporter Exporter
	now      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithExporter sets the spreadsheet exporter
func WithExporter(e Exporter) Option {
	return func(s *Service) {
		s.exporter = e
	}
}

// WithPolicy sets the site conventions
func WithPolicy(p fuel.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithDefaultUsageSource sets the usage source used when a submit names none
func WithDefaultUsageSource(src fuel.UsageSource) Option {
	return func(s *Service) {
		s.defaultSource = src
	}
}

// WithClearAfterSubmit removes the workspace once its rows are stored
func WithClearAfterSubmit(clear bool) Option {
	return func(s *Service) {
		s.clearAfterSubmit = clear
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new fuel report service
func NewService(
	calibration fuel.CalibrationRepository,
	roster fuel.RosterRepository,
	submissions fuel.SubmissionRepository,
	workspaces fuel.WorkspaceStore,
	opts ...Option,
) *Service {
	s := &Service{
		calibration:   calibration,
		roster:        roster,
		submissions:   submissions,
		workspaces:    workspaces,
		policy:        fuel.DefaultPolicy(),
		defaultSource: fuel.UsageSourceFlowmeter,
		logger:        zap.NewNop(),
		recorder:      noopRecorder{},
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the conventions in effect
func (s *Service) Policy() fuel.Policy {
	return s.policy
}

// Parse extracts everything the text says. previous supplies the header
// when the text has no usable date or shift.
func (s *Service) Parse(ctx context.Context, text string, previous fuel.ReportHeader) *fuel.ParseResult {
	p := reporttext.New(
		reporttext.WithHubCode(s.policy.HubCode),
		reporttext.WithLogger(logger.Enrich(ctx, s.logger)),
		reporttext.WithPreviousHeader(previous),
	)
	return p.Parse(text)
}

// Reconcile loads calibration and roster data for the referenced units and
// computes the finalized view. Lookup failures degrade to empty data: no
// tera tables, or no roster (every unresolved unit gets a ROSTER_MISS).
func (s *Service) Reconcile(ctx context.Context, parsed *fuel.ParseResult) (*fuel.Reconciliation, error) {
	log := logger.Enrich(ctx, s.logger)
	ids := parsed.UnitIDs()

	var (
		points []fuel.CalibrationPoint
		roster map[string]string
	)
	if len(ids) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			p, err := s.calibration.FindByUnits(gctx, ids)
			if err != nil {
				log.Warn("Calibration lookup failed, reconciling without tera tables",
					zap.Int("units", len(ids)), zap.Error(err))
				return nil
			}
			points = p
			return nil
		})
		g.Go(func() error {
			r, err := s.roster.FindWarehouses(gctx, ids)
			if err != nil {
				log.Warn("Roster lookup failed, reconciling without warehouses",
					zap.Int("units", len(ids)), zap.Error(err))
				return nil
			}
			roster = r
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	rec := fuel.Reconcile(parsed, fuel.NewCalibrationSet(points), roster, s.policy)

	for _, w := range rec.Warnings {
		switch w.Kind {
		case fuel.WarningCalibrationMiss:
			log.Warn("Calibration miss", zap.String("unit_id", w.UnitID))
		case fuel.WarningRosterMiss:
			log.Debug("Roster miss", zap.String("unit_id", w.UnitID))
		}
	}
	return rec, nil
}

// Analyze parses, reconciles and validates text without storing anything
func (s *Service) Analyze(ctx context.Context, text string, previous fuel.ReportHeader) (*fuel.Workspace, error) {
	parsed := s.Parse(ctx, text, previous)

	rec, err := s.Reconcile(ctx, parsed)
	if err != nil {
		return nil, err
	}
	s.recorder.RecordReport(parsed, rec)

	return &fuel.Workspace{
		Text:      text,
		Parsed:    parsed,
		Result:    rec,
		Issues:    fuel.Validate(rec),
		UpdatedAt: s.now(),
	}, nil
}

// Process analyzes text and replaces the workspace snapshot with the result.
// The header of the previous snapshot fills in a missing date or shift.
func (s *Service) Process(ctx context.Context, workspaceID, text string) (*fuel.Workspace, error) {
	ctx = logger.WithWorkspaceID(ctx, workspaceID)

	previous, err := s.previousHeader(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	ws, err := s.Analyze(ctx, text, previous)
	if err != nil {
		return nil, err
	}
	ws.ID = workspaceID

	if err := s.workspaces.Put(ctx, ws); err != nil {
		return nil, fmt.Errorf("save workspace: %w", err)
	}

	logger.Enrich(ctx, s.logger).Info("Report processed",
		zap.String("date", ws.Parsed.Header.Date),
		zap.Int("shift", ws.Parsed.Header.Shift),
		zap.Int("units", len(ws.Result.Units)),
		zap.Int("skipped", ws.Parsed.Skipped),
		zap.Int("issues", len(ws.Issues)),
	)
	return ws, nil
}

func (s *Service) previousHeader(ctx context.Context, workspaceID string) (fuel.ReportHeader, error) {
	prev, err := s.workspaces.Get(ctx, workspaceID)
	if errors.Is(err, fuel.ErrWorkspaceNotFound) {
		return fuel.ReportHeader{}, nil
	}
	if err != nil {
		return fuel.ReportHeader{}, fmt.Errorf("load workspace: %w", err)
	}
	return prev.Header(), nil
}

// Get returns a stored workspace
func (s *Service) Get(ctx context.Context, workspaceID string) (*fuel.Workspace, error) {
	return s.workspaces.Get(ctx, workspaceID)
}

// Delete discards a workspace
func (s *Service) Delete(ctx context.Context, workspaceID string) error {
	return s.workspaces.Delete(ctx, workspaceID)
}

// processed loads a workspace that has a reconciliation
func (s *Service) processed(ctx context.Context, workspaceID string) (*fuel.Workspace, error) {
	ws, err := s.workspaces.Get(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if ws.Result == nil || ws.Parsed == nil {
		return nil, fuel.ErrNotProcessed
	}
	return ws, nil
}

// Render returns the canonical report text of a workspace
func (s *Service) Render(ctx context.Context, workspaceID string) (string, error) {
	ws, err := s.processed(ctx, workspaceID)
	if err != nil {
		return "", err
	}
	return reporttext.Render(ws.Result), nil
}

// Export writes the workspace reconciliation with the configured exporter
// and returns the header of the exported report.
func (s *Service) Export(ctx context.Context, workspaceID string, w io.Writer) (fuel.ReportHeader, error) {
	if s.exporter == nil {
		return fuel.ReportHeader{}, fmt.Errorf("no exporter configured")
	}
	ws, err := s.processed(ctx, workspaceID)
	if err != nil {
		return fuel.ReportHeader{}, err
	}
	if err := s.exporter.Write(ws.Result, w); err != nil {
		return fuel.ReportHeader{}, err
	}
	return ws.Result.Header, nil
}

// ExportContentType is the MIME type Export produces
func (s *Service) ExportContentType() string {
	if s.exporter == nil {
		return "application/octet-stream"
	}
	return s.exporter.ContentType()
}
