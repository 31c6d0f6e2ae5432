// Command fuelctl reconciles a fuel report from the command line.
// Calibration and roster come from flags, or from the configured database
// with --db.
//
// Usage:
//
//	fuelctl parse report.txt
//	fuelctl reconcile report.txt --calibration tera.csv --roster FT01=OFT01 -o yaml
//	fuelctl reconcile report.txt --db
//	fuelctl render report.txt --calibration tera.csv
//	fuelctl export report.txt --calibration tera.csv --out report.xlsx
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
