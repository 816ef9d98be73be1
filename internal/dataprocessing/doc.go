// Package dataprocessing implements the ETL side of the application:
// reading raw retail transaction logs (CSV or XLSX), coercing rows into
// domain.OrderLine values, and applying the cleaning rules that produce
// the dataset the dashboard serves.
//
// The flow is Parser -> Cleaner -> Pipeline. Parser handles file formats
// and type coercion, Cleaner handles row-level business rules, and
// Pipeline fans several input files out across a worker group and merges
// the results in date order.
package dataprocessing
