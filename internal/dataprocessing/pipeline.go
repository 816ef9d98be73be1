package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"retailpulse/internal/errors"
	"retailpulse/pkg/contracts/domain"
)

// Pipeline runs parse+clean over a set of input files and merges the
// results. Files are independent, so they are processed concurrently.
type Pipeline struct {
	parser  *Parser
	cleaner *Cleaner
	logger  *slog.Logger
	workers int
}

// NewPipeline creates an ETL pipeline. workers caps the number of files
// parsed at once; zero or negative means 4.
func NewPipeline(logger *slog.Logger, workers int) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 4
	}
	return &Pipeline{
		parser:  NewParser(logger),
		cleaner: NewCleaner(logger),
		logger:  logger.With(slog.String("component", "etl_pipeline")),
		workers: workers,
	}
}

// Run processes every input file and returns the merged, date-ordered
// cleaned lines together with the combined clean report.
func (p *Pipeline) Run(ctx context.Context, inputs []string) ([]domain.OrderLine, domain.CleanReport, error) {
	if len(inputs) == 0 {
		return nil, domain.CleanReport{}, errors.NewAppValidationError("no input files given")
	}

	var (
		mu     sync.Mutex
		lines  []domain.OrderLine
		report domain.CleanReport
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, input := range inputs {
		input := input
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			parsed, err := p.parser.ParseFile(input)
			if err != nil {
				return err
			}

			cleaned, fileReport := p.cleaner.Clean(parsed)

			mu.Lock()
			lines = append(lines, cleaned...)
			report.Add(fileReport)
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, domain.CleanReport{}, err
	}

	// Per-file output is already sorted; the merge is not.
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].InvoiceDate.Before(lines[j].InvoiceDate)
	})

	// Duplicates can also straddle files.
	lines, crossDups := dedupeSorted(lines)
	report.DuplicateRows += crossDups
	report.Kept -= crossDups

	p.logger.InfoContext(ctx, "ETL pipeline complete",
		slog.Int("files", len(inputs)),
		slog.Int("input_rows", report.InputRows),
		slog.Int("kept", report.Kept),
		slog.Int("dropped", report.Dropped()))

	return lines, report, nil
}

// dedupeSorted removes exact duplicates from the merged slice.
func dedupeSorted(lines []domain.OrderLine) ([]domain.OrderLine, int) {
	seen := make(map[string]struct{}, len(lines))
	out := lines[:0]
	dropped := 0
	for _, line := range lines {
		key := line.Key()
		if _, dup := seen[key]; dup {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		out = append(out, line)
	}
	return out, dropped
}
