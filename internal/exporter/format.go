package exporter

import (
	"fmt"
)

// formatFloat renders a monetary value with exactly 2 decimal places,
// so 13.4 appears as 13.40 in exports.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatInt renders an int64 for export output.
func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}
