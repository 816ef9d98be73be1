package analytics

import (
	"sort"
	"time"
)

// KPIs computes the headline metrics for the view. An empty view yields
// a zero KPISet rather than NaN averages.
func (v *View) KPIs() KPISet {
	if v.Len() == 0 {
		return KPISet{}
	}

	var kpi KPISet
	invoices := make(map[string]struct{})
	customers := make(map[string]struct{})
	products := make(map[string]struct{})
	orderDates := make(map[string][]time.Time) // customer -> invoice timestamps
	seenInvoice := make(map[string]struct{})   // customer|invoice pairs

	for _, idx := range v.indexes {
		line := v.dataset.lines[idx]
		kpi.TotalSales += line.TotalPrice
		invoices[line.InvoiceNo] = struct{}{}
		customers[line.CustomerID] = struct{}{}
		products[line.Description] = struct{}{}

		pair := line.CustomerID + "|" + line.InvoiceNo
		if _, dup := seenInvoice[pair]; !dup {
			seenInvoice[pair] = struct{}{}
			orderDates[line.CustomerID] = append(orderDates[line.CustomerID], line.InvoiceDate)
		}
	}

	kpi.Orders = len(invoices)
	kpi.Customers = len(customers)
	kpi.Products = len(products)
	if kpi.Orders > 0 {
		kpi.AvgOrderValue = kpi.TotalSales / float64(kpi.Orders)
	}
	kpi.MeanInterOrderDays = meanInterOrderDays(orderDates)

	return kpi
}

// meanInterOrderDays averages the gaps between consecutive orders of
// the same customer, across all customers with at least two orders.
// Customers with a single order contribute nothing.
func meanInterOrderDays(orderDates map[string][]time.Time) float64 {
	var totalDays float64
	var gaps int

	for _, dates := range orderDates {
		if len(dates) < 2 {
			continue
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		for i := 1; i < len(dates); i++ {
			totalDays += dates[i].Sub(dates[i-1]).Hours() / 24
			gaps++
		}
	}

	if gaps == 0 {
		return 0
	}
	return totalDays / float64(gaps)
}
