package services

import (
	"context"
	"time"

	"retailpulse/internal/config"
	"retailpulse/internal/infrastructure"
)

// HealthService reports liveness and readiness of the dashboard server.
type HealthService struct {
	data    *DataService
	paths   *config.Paths
	started time.Time
}

// NewHealthService creates the service.
func NewHealthService(data *DataService, paths *config.Paths) *HealthService {
	return &HealthService{
		data:    data,
		paths:   paths,
		started: time.Now(),
	}
}

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	DatasetLoaded bool      `json:"dataset_loaded"`
	DatasetRows   int       `json:"dataset_rows"`
	CleanedFile   bool      `json:"cleaned_file_present"`
	CheckedAt     time.Time `json:"checked_at"`
}

// Liveness reports whether the process is up. Always healthy if it answers.
func (s *HealthService) Liveness(ctx context.Context) HealthStatus {
	return s.status("healthy")
}

// Readiness reports whether the server can answer dashboard queries,
// which requires a loaded dataset.
func (s *HealthService) Readiness(ctx context.Context) (HealthStatus, bool) {
	ready := s.data.Loaded()
	status := "ready"
	if !ready {
		status = "not_ready"
	}
	return s.status(status), ready
}

func (s *HealthService) status(label string) HealthStatus {
	return HealthStatus{
		Status:        label,
		Version:       infrastructure.ServiceVersion,
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		DatasetLoaded: s.data.Loaded(),
		DatasetRows:   s.data.Rows(),
		CleanedFile:   config.FileExists(s.paths.CleanedFile),
		CheckedAt:     time.Now(),
	}
}
