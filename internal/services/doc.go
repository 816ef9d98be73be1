// Package services holds the business logic between the HTTP handlers
// and the analytics engine: dataset lifecycle, filter validation,
// export generation and health reporting.
package services
