// Package analytics holds the in-memory dataset the dashboard queries.
//
// A Dataset is immutable once built: filters produce lightweight Views
// (index slices into the dataset) and every aggregation runs against a
// View. Customer segments are always computed over the full dataset, not
// the filtered view, matching how analysts read "new" or "repeat"
// customers regardless of the date range on screen.
package analytics
