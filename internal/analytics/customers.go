package analytics

import (
	"sort"
)

// CountrySalesRanking aggregates sales by country, best first, limited
// to n entries. Zero or negative n means no limit.
func (v *View) CountrySalesRanking(n int) []CountrySales {
	sales := make(map[string]float64)
	orders := make(map[string]map[string]struct{})

	for _, idx := range v.indexes {
		line := v.dataset.lines[idx]
		sales[line.Country] += line.TotalPrice
		set := orders[line.Country]
		if set == nil {
			set = make(map[string]struct{})
			orders[line.Country] = set
		}
		set[line.InvoiceNo] = struct{}{}
	}

	ranked := make([]CountrySales, 0, len(sales))
	for country, total := range sales {
		ranked = append(ranked, CountrySales{
			Country: country,
			Sales:   total,
			Orders:  len(orders[country]),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Sales != ranked[j].Sales {
			return ranked[i].Sales > ranked[j].Sales
		}
		return ranked[i].Country < ranked[j].Country
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// CustomerDistribution counts distinct customers per country and
// returns the n largest slices plus an "Others" remainder. Shares sum
// to 1 over the whole view.
func (v *View) CustomerDistribution(n int) []DistributionSlice {
	if v.Len() == 0 {
		return []DistributionSlice{}
	}

	byCountry := make(map[string]map[string]struct{})
	for _, idx := range v.indexes {
		line := v.dataset.lines[idx]
		set := byCountry[line.Country]
		if set == nil {
			set = make(map[string]struct{})
			byCountry[line.Country] = set
		}
		set[line.CustomerID] = struct{}{}
	}

	total := 0
	slices := make([]DistributionSlice, 0, len(byCountry))
	for country, customers := range byCountry {
		slices = append(slices, DistributionSlice{Country: country, Customers: len(customers)})
		total += len(customers)
	}
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Customers != slices[j].Customers {
			return slices[i].Customers > slices[j].Customers
		}
		return slices[i].Country < slices[j].Country
	})

	if n > 0 && len(slices) > n {
		others := 0
		for _, s := range slices[n:] {
			others += s.Customers
		}
		slices = slices[:n]
		if others > 0 {
			slices = append(slices, DistributionSlice{Country: "Others", Customers: others})
		}
	}

	for i := range slices {
		slices[i].Share = float64(slices[i].Customers) / float64(total)
	}
	return slices
}

// RFM computes recency, frequency and monetary value per customer in
// the view. Recency is measured against the day after the view's last
// invoice, so the most recent buyer scores 1 rather than 0.
func (v *View) RFM() ([]RFMRow, RFMSummary) {
	if v.Len() == 0 {
		return []RFMRow{}, RFMSummary{}
	}

	last := v.dataset.lines[v.indexes[0]].InvoiceDate
	spend := make(map[string]float64)
	lastSeen := make(map[string]int64) // unix seconds of latest invoice
	invoices := make(map[string]map[string]struct{})

	for _, idx := range v.indexes {
		line := v.dataset.lines[idx]
		if line.InvoiceDate.After(last) {
			last = line.InvoiceDate
		}
		spend[line.CustomerID] += line.TotalPrice
		if ts := line.InvoiceDate.Unix(); ts > lastSeen[line.CustomerID] {
			lastSeen[line.CustomerID] = ts
		}
		set := invoices[line.CustomerID]
		if set == nil {
			set = make(map[string]struct{})
			invoices[line.CustomerID] = set
		}
		set[line.InvoiceNo] = struct{}{}
	}

	reference := last.AddDate(0, 0, 1)

	rows := make([]RFMRow, 0, len(spend))
	for customer, monetary := range spend {
		recency := int(reference.Unix()-lastSeen[customer]) / 86400
		rows = append(rows, RFMRow{
			CustomerID:  customer,
			RecencyDays: recency,
			Frequency:   len(invoices[customer]),
			Monetary:    monetary,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Monetary != rows[j].Monetary {
			return rows[i].Monetary > rows[j].Monetary
		}
		return rows[i].CustomerID < rows[j].CustomerID
	})

	summary := RFMSummary{Customers: len(rows)}
	for i, row := range rows {
		summary.Recency = foldStats(summary.Recency, float64(row.RecencyDays), i == 0)
		summary.Frequency = foldStats(summary.Frequency, float64(row.Frequency), i == 0)
		summary.Monetary = foldStats(summary.Monetary, row.Monetary, i == 0)
	}
	if len(rows) > 0 {
		summary.Recency.Mean /= float64(len(rows))
		summary.Frequency.Mean /= float64(len(rows))
		summary.Monetary.Mean /= float64(len(rows))
	}

	return rows, summary
}

// foldStats accumulates min/max and sums into Mean; the caller divides
// Mean by the row count at the end.
func foldStats(s RFMStats, value float64, first bool) RFMStats {
	if first {
		return RFMStats{Min: value, Mean: value, Max: value}
	}
	if value < s.Min {
		s.Min = value
	}
	if value > s.Max {
		s.Max = value
	}
	s.Mean += value
	return s
}
