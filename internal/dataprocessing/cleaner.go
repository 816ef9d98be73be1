package dataprocessing

import (
	"log/slog"
	"sort"

	"retailpulse/pkg/contracts/domain"
)

// Cleaner applies the row-level cleaning rules to coerced order lines.
// Rules run in a fixed order and each dropped row is attributed to the
// first rule it violates, so the CleanReport always balances.
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a cleaner with the given logger.
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger.With(slog.String("component", "cleaner"))}
}

// Clean filters the parsed lines, computes TotalPrice for survivors and
// returns them sorted by invoice date. The malformed count from parsing
// is carried into the report so InputRows covers every raw row.
func (c *Cleaner) Clean(parsed *ParsedFile) ([]domain.OrderLine, domain.CleanReport) {
	report := domain.CleanReport{
		InputRows:     parsed.InputRows,
		MalformedRows: parsed.Malformed,
	}

	seen := make(map[string]struct{}, len(parsed.Lines))
	cleaned := make([]domain.OrderLine, 0, len(parsed.Lines))

	for _, line := range parsed.Lines {
		switch {
		case line.CustomerID == "":
			report.MissingCustomer++
		case line.Description == "":
			report.MissingProduct++
		case line.IsCancellation():
			report.Cancellations++
		case line.Quantity <= 0:
			report.NonPositiveQty++
		case line.UnitPrice <= 0:
			report.NonPositivePrice++
		default:
			key := line.Key()
			if _, dup := seen[key]; dup {
				report.DuplicateRows++
				continue
			}
			seen[key] = struct{}{}

			line.TotalPrice = float64(line.Quantity) * line.UnitPrice
			cleaned = append(cleaned, line)
		}
	}

	sort.SliceStable(cleaned, func(i, j int) bool {
		return cleaned[i].InvoiceDate.Before(cleaned[j].InvoiceDate)
	})

	report.Kept = len(cleaned)

	c.logger.Info("cleaned order lines",
		slog.String("path", parsed.Path),
		slog.Int("input_rows", report.InputRows),
		slog.Int("kept", report.Kept),
		slog.Int("dropped", report.Dropped()))

	return cleaned, report
}
