// Package preflight verifies external dependencies at daemon startup:
// transcription and muxing binaries plus mapped library directories. Failed
// checks are reported, not fatal; the operator decides what matters.
package preflight

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"

	"subforge/internal/config"
	"subforge/internal/logging"
)

// Result is the outcome of a single dependency check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CheckBinary verifies that a command resolves on PATH.
func CheckBinary(name, command string) Result {
	if command == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not found on PATH)", command)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// Run evaluates all startup checks for the given configuration.
func Run(cfg *config.Config) []Result {
	results := []Result{
		CheckBinary("Whisper", cfg.WhisperPath),
	}
	if cfg.MuxSubtitles {
		results = append(results, CheckBinary("FFmpeg", cfg.FFmpegPath))
	}
	for _, mapping := range cfg.PathMappings {
		if mapping.Regex {
			continue
		}
		results = append(results, CheckDirectoryAccess("Library "+mapping.Target, mapping.Target))
	}
	return results
}

// LogResults writes one line per check at a level matching its outcome.
func LogResults(logger *slog.Logger, results []Result) {
	if logger == nil {
		return
	}
	for _, result := range results {
		attrs := []logging.Attr{
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
		}
		if result.Passed {
			logger.Info("preflight check passed", logging.Args(attrs...)...)
		} else {
			logger.Warn("preflight check failed", logging.Args(attrs...)...)
		}
	}
}
