// Command etl cleans raw retail transaction logs into the canonical
// dataset file the dashboard serves.
//
// Inputs are given as arguments or discovered in the raw data
// directory. CSV and XLSX files are accepted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"retailpulse/internal/config"
	"retailpulse/internal/dataprocessing"
	"retailpulse/internal/exporter"
	"retailpulse/internal/infrastructure"
)

func main() {
	_ = godotenv.Load()

	workers := flag.Int("workers", 4, "number of input files processed concurrently")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [input files...]\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Without arguments, every CSV/XLSX file in the raw data directory is processed.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(flag.Args(), *workers); err != nil {
		fmt.Fprintf(os.Stderr, "etl error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, workers int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return fmt.Errorf("resolving paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("preparing directories: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	inputs := args
	if len(inputs) == 0 {
		inputs, err = discoverInputs(paths.RawDir)
		if err != nil {
			return err
		}
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no input files found in %s", paths.RawDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := dataprocessing.NewPipeline(logger, workers)
	lines, report, err := pipeline.Run(ctx, inputs)
	if err != nil {
		return err
	}

	if !report.Balanced() {
		logger.Error("clean report does not balance",
			slog.Int("input_rows", report.InputRows),
			slog.Int("kept", report.Kept),
			slog.Int("dropped", report.Dropped()))
		return fmt.Errorf("clean report does not balance: %d input, %d kept, %d dropped",
			report.InputRows, report.Kept, report.Dropped())
	}

	writer := exporter.NewCSVWriter(paths)
	if err := writer.WriteCleanedFile(lines); err != nil {
		return fmt.Errorf("writing cleaned file: %w", err)
	}

	logger.Info("ETL complete",
		slog.String("output", paths.CleanedFile),
		slog.Int("files", len(inputs)),
		slog.Int("input_rows", report.InputRows),
		slog.Int("kept", report.Kept),
		slog.Int("missing_customer", report.MissingCustomer),
		slog.Int("missing_product", report.MissingProduct),
		slog.Int("cancellations", report.Cancellations),
		slog.Int("non_positive_qty", report.NonPositiveQty),
		slog.Int("non_positive_price", report.NonPositivePrice),
		slog.Int("malformed", report.MalformedRows),
		slog.Int("duplicates", report.DuplicateRows))

	fmt.Printf("cleaned %d of %d rows into %s (dropped %d)\n",
		report.Kept, report.InputRows, paths.CleanedFile, report.Dropped())

	return nil
}

// discoverInputs lists the spreadsheet files in the raw directory.
func discoverInputs(rawDir string) ([]string, error) {
	var inputs []string
	for _, pattern := range []string{"*.csv", "*.xlsx", "*.xlsm"} {
		matches, err := filepath.Glob(filepath.Join(rawDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", rawDir, err)
		}
		inputs = append(inputs, matches...)
	}
	return inputs, nil
}
