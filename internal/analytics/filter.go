package analytics

import (
	"strings"

	"retailpulse/pkg/contracts/domain"
)

// View is the result of applying a filter: an ordered set of indexes
// into the dataset. Views share the dataset's backing slice and are
// cheap to build and discard per request.
type View struct {
	dataset *Dataset
	indexes []int
}

// Select applies the filter and returns the matching view. Lines keep
// their dataset order, so views stay date-sorted.
func (d *Dataset) Select(f Filter) *View {
	v := &View{dataset: d}

	countrySet := toSet(f.Countries)
	productSet := toSet(f.Products)
	customer := strings.ToLower(strings.TrimSpace(f.Customer))

	for i, line := range d.lines {
		if f.From != nil && line.InvoiceDate.Before(*f.From) {
			continue
		}
		if f.To != nil && line.InvoiceDate.After(*f.To) {
			continue
		}
		if countrySet != nil {
			if _, ok := countrySet[line.Country]; !ok {
				continue
			}
		}
		if productSet != nil {
			if _, ok := productSet[line.Description]; !ok {
				continue
			}
		}
		if customer != "" && !strings.Contains(strings.ToLower(line.CustomerID), customer) {
			continue
		}
		if f.MinQty != nil && line.Quantity < *f.MinQty {
			continue
		}
		if f.MaxQty != nil && line.Quantity > *f.MaxQty {
			continue
		}
		if f.MinPrice != nil && line.UnitPrice < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && line.UnitPrice > *f.MaxPrice {
			continue
		}
		if f.Segment != "" && f.Segment != SegmentAll && !d.inSegment(i, f.Segment) {
			continue
		}
		v.indexes = append(v.indexes, i)
	}

	return v
}

// Len returns the number of lines in the view.
func (v *View) Len() int { return len(v.indexes) }

// Line returns the i-th line of the view in dataset order.
func (v *View) Line(i int) domain.OrderLine {
	return v.dataset.lines[v.indexes[i]]
}

// Lines materialises the view as a slice, for export and pagination.
func (v *View) Lines() []domain.OrderLine {
	out := make([]domain.OrderLine, len(v.indexes))
	for i, idx := range v.indexes {
		out[i] = v.dataset.lines[idx]
	}
	return out
}

// Page returns one page of the view plus the total line count. Pages
// are 1-based; an out-of-range page yields an empty slice.
func (v *View) Page(page, size int) ([]domain.OrderLine, int) {
	total := len(v.indexes)
	if page < 1 || size < 1 {
		return nil, total
	}
	start := (page - 1) * size
	if start >= total {
		return []domain.OrderLine{}, total
	}
	end := start + size
	if end > total {
		end = total
	}
	out := make([]domain.OrderLine, 0, end-start)
	for _, idx := range v.indexes[start:end] {
		out = append(out, v.dataset.lines[idx])
	}
	return out, total
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			set[value] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}
