// Package testsupport provides shared helpers for listforge tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"listforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Content.BaseURL = "http://content.test"
	cfg.Validation.BaseURL = "http://validation.test"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithExportDir sets a pre-authorized export directory on the test config.
func WithExportDir(dir string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.ExportDir = dir
	}
}

// WithTemplate overrides the export path template on the test config.
func WithTemplate(template string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Export.PathTemplate = template
	}
}
