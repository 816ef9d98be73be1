// Package http contains the chi HTTP handlers of the dashboard API.
// Handlers translate query strings into service requests and render
// JSON responses; failures come back as RFC 7807 problem documents.
package http
