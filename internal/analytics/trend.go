package analytics

import (
	"sort"
	"time"
)

// bucketKey formats a timestamp for the chosen trend interval.
func bucketKey(t time.Time, interval TrendInterval) string {
	switch interval {
	case IntervalMonthly:
		return t.Format("2006-01")
	case IntervalYearly:
		return t.Format("2006")
	default:
		return t.Format("2006-01-02")
	}
}

// Trend buckets the view's sales over time. Points are ordered by
// bucket; the lexicographic order of the bucket formats is also
// chronological.
func (v *View) Trend(interval TrendInterval) []TrendPoint {
	sales := make(map[string]float64)
	orders := make(map[string]map[string]struct{})

	for _, idx := range v.indexes {
		line := v.dataset.lines[idx]
		key := bucketKey(line.InvoiceDate, interval)
		sales[key] += line.TotalPrice
		set := orders[key]
		if set == nil {
			set = make(map[string]struct{})
			orders[key] = set
		}
		set[line.InvoiceNo] = struct{}{}
	}

	return trendPoints(sales, orders)
}

// WeekdayProfile aggregates sales by day of week, Monday first, with
// every weekday present even when empty.
func (v *View) WeekdayProfile() []TrendPoint {
	weekdays := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}

	sales := make(map[time.Weekday]float64)
	orders := make(map[time.Weekday]map[string]struct{})
	for _, idx := range v.indexes {
		line := v.dataset.lines[idx]
		day := line.InvoiceDate.Weekday()
		sales[day] += line.TotalPrice
		set := orders[day]
		if set == nil {
			set = make(map[string]struct{})
			orders[day] = set
		}
		set[line.InvoiceNo] = struct{}{}
	}

	points := make([]TrendPoint, 0, len(weekdays))
	for _, day := range weekdays {
		points = append(points, TrendPoint{
			Bucket: day.String(),
			Sales:  sales[day],
			Orders: len(orders[day]),
		})
	}
	return points
}

// HourlyProfile aggregates sales by hour of day, 0 through 23, with
// every hour present even when empty.
func (v *View) HourlyProfile() []TrendPoint {
	var sales [24]float64
	var orders [24]map[string]struct{}

	for _, idx := range v.indexes {
		line := v.dataset.lines[idx]
		hour := line.InvoiceDate.Hour()
		sales[hour] += line.TotalPrice
		if orders[hour] == nil {
			orders[hour] = make(map[string]struct{})
		}
		orders[hour][line.InvoiceNo] = struct{}{}
	}

	points := make([]TrendPoint, 24)
	for hour := range points {
		points[hour] = TrendPoint{
			Bucket: time.Date(2000, 1, 1, hour, 0, 0, 0, time.UTC).Format("15:00"),
			Sales:  sales[hour],
			Orders: len(orders[hour]),
		}
	}
	return points
}

// CountryTrends returns one monthly series per country in the view,
// limited to the top maxCountries by total sales.
func (v *View) CountryTrends(interval TrendInterval, maxCountries int) []CountrySeries {
	countries := v.CountrySalesRanking(maxCountries)

	series := make([]CountrySeries, 0, len(countries))
	for _, country := range countries {
		sales := make(map[string]float64)
		orders := make(map[string]map[string]struct{})
		for _, idx := range v.indexes {
			line := v.dataset.lines[idx]
			if line.Country != country.Country {
				continue
			}
			key := bucketKey(line.InvoiceDate, interval)
			sales[key] += line.TotalPrice
			set := orders[key]
			if set == nil {
				set = make(map[string]struct{})
				orders[key] = set
			}
			set[line.InvoiceNo] = struct{}{}
		}
		series = append(series, CountrySeries{
			Country: country.Country,
			Points:  trendPoints(sales, orders),
		})
	}

	return series
}

func trendPoints(sales map[string]float64, orders map[string]map[string]struct{}) []TrendPoint {
	keys := make([]string, 0, len(sales))
	for key := range sales {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	points := make([]TrendPoint, 0, len(keys))
	for _, key := range keys {
		points = append(points, TrendPoint{
			Bucket: key,
			Sales:  sales[key],
			Orders: len(orders[key]),
		})
	}
	return points
}
