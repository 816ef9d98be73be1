package services

import (
	"time"

	"retailpulse/internal/analytics"
	"retailpulse/internal/errors"
	"retailpulse/pkg/contracts/domain"
)

// FilterRequest carries the raw filter parameters of a dashboard query
// before validation. Handlers fill it straight from the query string.
type FilterRequest struct {
	From      string   `json:"from" validate:"omitempty,max=19"`
	To        string   `json:"to" validate:"omitempty,max=19"`
	Countries []string `json:"countries" validate:"omitempty,dive,max=64"`
	Products  []string `json:"products" validate:"omitempty,dive,max=128"`
	Customer  string   `json:"customer" validate:"omitempty,max=32"`
	MinQty    *int64   `json:"min_qty"`
	MaxQty    *int64   `json:"max_qty"`
	MinPrice  *float64 `json:"min_price"`
	MaxPrice  *float64 `json:"max_price"`
	Segment   string   `json:"segment" validate:"omitempty,oneof=all new repeat high_value"`
}

// filterDateLayouts accepted for the from/to parameters. A bare date on
// the "to" side is widened to the end of that day.
var filterDateLayouts = []string{domain.CSVDateFormat, "2006-01-02"}

func parseFilterDate(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range filterDateLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		if endOfDay && layout == "2006-01-02" {
			t = t.Add(24*time.Hour - time.Second)
		}
		return &t, nil
	}
	return nil, errors.ErrValidation("date", "expected YYYY-MM-DD or YYYY-MM-DD HH:MM:SS")
}

// toFilter converts the validated request into an analytics filter.
func (r FilterRequest) toFilter() (analytics.Filter, error) {
	from, err := parseFilterDate(r.From, false)
	if err != nil {
		return analytics.Filter{}, errors.ErrValidation("from", "expected YYYY-MM-DD or YYYY-MM-DD HH:MM:SS")
	}
	to, err := parseFilterDate(r.To, true)
	if err != nil {
		return analytics.Filter{}, errors.ErrValidation("to", "expected YYYY-MM-DD or YYYY-MM-DD HH:MM:SS")
	}
	if from != nil && to != nil && to.Before(*from) {
		return analytics.Filter{}, errors.ErrValidation("to", "must not be before from")
	}
	if r.MinQty != nil && r.MaxQty != nil && *r.MaxQty < *r.MinQty {
		return analytics.Filter{}, errors.ErrValidation("max_qty", "must not be less than min_qty")
	}
	if r.MinPrice != nil && r.MaxPrice != nil && *r.MaxPrice < *r.MinPrice {
		return analytics.Filter{}, errors.ErrValidation("max_price", "must not be less than min_price")
	}

	return analytics.Filter{
		From:      from,
		To:        to,
		Countries: r.Countries,
		Products:  r.Products,
		Customer:  r.Customer,
		MinQty:    r.MinQty,
		MaxQty:    r.MaxQty,
		MinPrice:  r.MinPrice,
		MaxPrice:  r.MaxPrice,
		Segment:   analytics.Segment(r.Segment),
	}, nil
}
