package domain

// CleanReport accounts for every raw row the ETL saw: each row either
// survives or is counted against exactly one drop reason.
type CleanReport struct {
	InputRows         int `json:"input_rows"`
	Kept              int `json:"kept"`
	MissingCustomer   int `json:"missing_customer"`
	MissingProduct    int `json:"missing_product"`
	Cancellations     int `json:"cancellations"`
	NonPositiveQty    int `json:"non_positive_qty"`
	NonPositivePrice  int `json:"non_positive_price"`
	MalformedRows     int `json:"malformed_rows"`
	DuplicateRows     int `json:"duplicate_rows"`
}

// Dropped returns the total number of discarded rows.
func (r CleanReport) Dropped() int {
	return r.MissingCustomer + r.MissingProduct + r.Cancellations +
		r.NonPositiveQty + r.NonPositivePrice + r.MalformedRows + r.DuplicateRows
}

// Balanced reports whether every input row is accounted for.
func (r CleanReport) Balanced() bool {
	return r.InputRows == r.Kept+r.Dropped()
}

// Add merges another report into this one.
func (r *CleanReport) Add(other CleanReport) {
	r.InputRows += other.InputRows
	r.Kept += other.Kept
	r.MissingCustomer += other.MissingCustomer
	r.MissingProduct += other.MissingProduct
	r.Cancellations += other.Cancellations
	r.NonPositiveQty += other.NonPositiveQty
	r.NonPositivePrice += other.NonPositivePrice
	r.MalformedRows += other.MalformedRows
	r.DuplicateRows += other.DuplicateRows
}
