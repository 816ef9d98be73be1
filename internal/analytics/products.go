package analytics

import (
	"sort"
)

// TopProducts ranks products in the view by the chosen metric and
// returns the first n. Popularity means the number of distinct
// invoices a product appears on.
func (v *View) TopProducts(metric ProductMetric, n int) []ProductRank {
	if n <= 0 || v.Len() == 0 {
		return []ProductRank{}
	}

	type productAgg struct {
		rank     ProductRank
		invoices map[string]struct{}
	}

	byProduct := make(map[string]*productAgg)
	for _, idx := range v.indexes {
		line := v.dataset.lines[idx]
		agg := byProduct[line.Description]
		if agg == nil {
			agg = &productAgg{
				rank:     ProductRank{Description: line.Description, StockCode: line.StockCode},
				invoices: make(map[string]struct{}),
			}
			byProduct[line.Description] = agg
		}
		agg.rank.Revenue += line.TotalPrice
		agg.rank.Quantity += line.Quantity
		agg.invoices[line.InvoiceNo] = struct{}{}
	}

	ranks := make([]ProductRank, 0, len(byProduct))
	for _, agg := range byProduct {
		agg.rank.Orders = len(agg.invoices)
		ranks = append(ranks, agg.rank)
	}

	less := func(a, b ProductRank) bool {
		switch metric {
		case MetricQuantity:
			if a.Quantity != b.Quantity {
				return a.Quantity > b.Quantity
			}
		case MetricPopularity:
			if a.Orders != b.Orders {
				return a.Orders > b.Orders
			}
		default:
			if a.Revenue != b.Revenue {
				return a.Revenue > b.Revenue
			}
		}
		return a.Description < b.Description
	}
	sort.Slice(ranks, func(i, j int) bool { return less(ranks[i], ranks[j]) })

	if len(ranks) > n {
		ranks = ranks[:n]
	}
	return ranks
}

// PriceDistribution computes the five-number summary of unit prices in
// the view, for the box plot next to the product charts.
func (v *View) PriceDistribution() PriceStats {
	if v.Len() == 0 {
		return PriceStats{}
	}

	prices := make([]float64, 0, v.Len())
	for _, idx := range v.indexes {
		prices = append(prices, v.dataset.lines[idx].UnitPrice)
	}
	sort.Float64s(prices)

	return PriceStats{
		Min:    prices[0],
		Q1:     quantile(prices, 0.25),
		Median: quantile(prices, 0.5),
		Q3:     quantile(prices, 0.75),
		Max:    prices[len(prices)-1],
	}
}

// quantile interpolates linearly between order statistics, matching the
// default method of most stats libraries. values must be sorted.
func quantile(values []float64, q float64) float64 {
	if len(values) == 1 {
		return values[0]
	}
	pos := q * float64(len(values)-1)
	lo := int(pos)
	if lo >= len(values)-1 {
		return values[len(values)-1]
	}
	frac := pos - float64(lo)
	return values[lo] + frac*(values[lo+1]-values[lo])
}
