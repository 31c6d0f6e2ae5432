package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fuelops/backend/internal/domain/fuel"
	"github.com/fuelops/backend/internal/infrastructure/export"
	"github.com/fuelops/backend/internal/infrastructure/reporttext"
)

func newParseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <report|->",
		Short: "Extract header, units and transfers without reconciling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := opts.parse(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, result)
		},
	}
}

// reconcileOutput is what reconcile prints
type reconcileOutput struct {
	*fuel.Reconciliation
	Issues []fuel.Issue `json:"issues"`
}

func newReconcileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <report|->",
		Short: "Compute stock and usage for every unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := opts.reconcile(cmd.Context(), args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, reconcileOutput{
				Reconciliation: rec,
				Issues:         fuel.Validate(rec),
			})
		},
	}
}

func newRenderCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "render <report|->",
		Short: "Print the reconciled report as chat text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := opts.reconcile(cmd.Context(), args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), reporttext.Render(rec))
			return err
		},
	}
}

func newExportCmd(opts *options) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <report|->",
		Short: "Write the reconciled report as a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := opts.reconcile(cmd.Context(), args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := export.NewXLSXExporter().Write(rec, f); err != nil {
				_ = f.Close()
				return fmt.Errorf("export: %w", err)
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVar(&out, "out", "fuel-report.xlsx", "spreadsheet path")
	return cmd
}
