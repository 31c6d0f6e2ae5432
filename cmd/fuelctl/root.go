package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fuelops/backend/internal/application/fuelreport"
	"github.com/fuelops/backend/internal/domain/fuel"
	"github.com/fuelops/backend/internal/infrastructure/cache"
	"github.com/fuelops/backend/internal/infrastructure/config"
	csvimport "github.com/fuelops/backend/internal/infrastructure/import"
	"github.com/fuelops/backend/internal/infrastructure/logger"
	"github.com/fuelops/backend/internal/infrastructure/persistence"
	"github.com/fuelops/backend/internal/infrastructure/reporttext"
)

// options shared by every subcommand
type options struct {
	hubCode         string
	reviewThreshold string
	calibration     string
	roster          map[string]string
	useDB           bool
	output          string
	logLevel        string

	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "fuelctl",
		Short:         "Parse and reconcile shift fuel reports",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(&logger.Config{
				Level:      opts.logLevel,
				Format:     "console",
				Output:     "stderr",
				TimeFormat: "15:04:05",
				Service:    "fuelctl",
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			opts.log = log
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.hubCode, "hub", fuel.DefaultPolicy().HubCode, "hub warehouse code")
	flags.StringVar(&opts.reviewThreshold, "review-threshold", fuel.DefaultPolicy().ReviewThreshold.String(), "sonding deviation in liters that flags a unit for review")
	flags.StringVar(&opts.calibration, "calibration", "", "calibration CSV (unit_id,height_cm,qty_liter)")
	flags.StringToStringVar(&opts.roster, "roster", nil, "unit to warehouse assignments, e.g. FT01=OFT01")
	flags.BoolVar(&opts.useDB, "db", false, "load calibration, roster and policy from the configured database (config.toml / FUEL_ env)")
	flags.StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newParseCmd(opts),
		newReconcileCmd(opts),
		newRenderCmd(opts),
		newExportCmd(opts),
	)
	return root
}

func (o *options) policy() (fuel.Policy, error) {
	p := fuel.DefaultPolicy()
	p.HubCode = strings.ToUpper(strings.TrimSpace(o.hubCode))
	threshold, err := decimal.NewFromString(o.reviewThreshold)
	if err != nil {
		return p, fmt.Errorf("invalid review threshold %q: %w", o.reviewThreshold, err)
	}
	p.ReviewThreshold = threshold
	return p, nil
}

func (o *options) parse(path string, stdin io.Reader) (*fuel.ParseResult, error) {
	text, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}
	parser := reporttext.New(
		reporttext.WithHubCode(strings.ToUpper(strings.TrimSpace(o.hubCode))),
		reporttext.WithLogger(o.log),
	)
	result := parser.Parse(text)
	o.log.Debug("Report parsed",
		zap.String("date", result.Header.Date),
		zap.Int("shift", result.Header.Shift),
		zap.Int("units", len(result.Units)),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (o *options) reconcile(ctx context.Context, path string, stdin io.Reader) (*fuel.Reconciliation, error) {
	if o.useDB {
		if o.calibration != "" || len(o.roster) > 0 {
			return nil, errors.New("--db cannot be combined with --calibration or --roster")
		}
		return o.reconcileFromDB(ctx, path, stdin)
	}

	policy, err := o.policy()
	if err != nil {
		return nil, err
	}
	result, err := o.parse(path, stdin)
	if err != nil {
		return nil, err
	}
	calibration, err := o.loadCalibration()
	if err != nil {
		return nil, err
	}

	rec := fuel.Reconcile(result, calibration, o.roster, policy)
	for _, w := range rec.Warnings {
		o.log.Warn("Reconciliation warning",
			zap.String("kind", string(w.Kind)),
			zap.String("unit_id", w.UnitID),
			zap.String("message", w.Message),
		)
	}
	return rec, nil
}

// reconcileFromDB runs the report through the same service the server uses.
// Hub and threshold come from the fuel config section.
func (o *options) reconcileFromDB(ctx context.Context, path string, stdin io.Reader) (*fuel.Reconciliation, error) {
	text, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	policy, err := cfg.Fuel.Policy()
	if err != nil {
		return nil, err
	}

	db, err := persistence.NewDatabase(&cfg.Database, o.log)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	store := cache.NewInMemoryWorkspaceStore(time.Minute)
	defer store.Close()

	svc := fuelreport.NewService(
		persistence.NewGormCalibrationRepository(db.DB),
		persistence.NewGormRosterRepository(db.DB),
		persistence.NewGormStockSubmissionRepository(db.DB),
		store,
		fuelreport.WithLogger(o.log),
		fuelreport.WithPolicy(policy),
	)
	ws, err := svc.Analyze(ctx, text, fuel.ReportHeader{})
	if err != nil {
		return nil, err
	}
	return ws.Result, nil
}

func (o *options) loadCalibration() (fuel.CalibrationSet, error) {
	if o.calibration == "" {
		o.log.Warn("No calibration file given, all stocks will be zero")
		return fuel.CalibrationSet{}, nil
	}
	f, err := os.Open(o.calibration)
	if err != nil {
		return nil, fmt.Errorf("open calibration: %w", err)
	}
	defer f.Close()

	points, errs := csvimport.ParseCalibration(f)
	if errs.HasErrors() {
		return nil, fmt.Errorf("calibration %s: %w", o.calibration, errs)
	}
	return fuel.NewCalibrationSet(points), nil
}

// readInput reads a report file, or stdin when path is "-"
func readInput(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read report: %w", err)
	}
	return string(data), nil
}
