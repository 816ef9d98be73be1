package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds the resolved directory layout for the application.
// Everything lives under BaseDir:
//
//	data/raw/      raw transaction logs (CSV or XLSX) fed to the ETL
//	data/          cleaned dataset consumed by the dashboard
//	data/exports/  spreadsheet downloads produced for the user
//	logs/          application log files
type Paths struct {
	BaseDir     string
	DataDir     string
	RawDir      string
	ExportsDir  string
	LogsDir     string
	CleanedFile string
}

// NewPaths resolves the directory layout from configuration.
// Relative directories are anchored at BaseDir; an empty BaseDir
// means the current working directory.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		base = wd
	}

	dataDir := resolveDir(base, cfg.DataDir)
	logsDir := resolveDir(base, cfg.LogsDir)

	cleaned := cfg.CleanedFile
	if !filepath.IsAbs(cleaned) {
		cleaned = filepath.Join(dataDir, cleaned)
	}

	return &Paths{
		BaseDir:     base,
		DataDir:     dataDir,
		RawDir:      filepath.Join(dataDir, "raw"),
		ExportsDir:  filepath.Join(dataDir, "exports"),
		LogsDir:     logsDir,
		CleanedFile: cleaned,
	}, nil
}

func resolveDir(base, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}

// EnsureDirectories creates every directory the application writes to.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.RawDir, p.ExportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ExportPath returns the full path for an export file name.
func (p *Paths) ExportPath(filename string) string {
	return filepath.Join(p.ExportsDir, filepath.Base(filename))
}

// RawPath returns the full path for a raw input file name.
func (p *Paths) RawPath(filename string) string {
	return filepath.Join(p.RawDir, filepath.Base(filename))
}

// LogPathResolution logs the resolved layout once at startup for debugging.
func (p *Paths) LogPathResolution() {
	slog.Info("Resolved application paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("data_dir", p.DataDir),
		slog.String("raw_dir", p.RawDir),
		slog.String("exports_dir", p.ExportsDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("cleaned_file", p.CleanedFile))
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
