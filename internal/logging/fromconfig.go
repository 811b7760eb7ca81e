package logging

import (
	"log/slog"
	"path/filepath"

	"subforge/internal/config"
)

// NewFromConfig builds the daemon logger: stdout plus a log file under
// log_dir when one is configured.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	paths := []string{"stdout"}
	if cfg.LogDir != "" {
		paths = append(paths, filepath.Join(cfg.LogDir, "subforge.log"))
	}
	return New(Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		OutputPaths: paths,
	})
}
