// Package daemon assembles the transcription service: scheduler workers, the
// HTTP API, and flock-based locking to prevent multiple instances.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"subforge/internal/config"
	"subforge/internal/logging"
	"subforge/internal/preflight"
	"subforge/internal/scheduler"
	"subforge/internal/server"
	"subforge/internal/services/whisper"
	"subforge/internal/transcribe"
)

// Daemon owns the service lifecycle.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	provider  *whisper.Provider
	scheduler *scheduler.Scheduler
	server    *server.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New wires the daemon's components from configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires configuration")
	}

	lockDir := cfg.LogDir
	if lockDir == "" {
		lockDir = os.TempDir()
	}
	lockPath := filepath.Join(lockDir, "subforged.lock")

	provider := whisper.NewProvider(cfg, logger)
	worker := transcribe.NewWorker(cfg, provider, logger)
	sched := scheduler.New(cfg, worker, logger)

	return &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		provider:  provider,
		scheduler: sched,
		server:    server.New(cfg.BindAddress(), sched, logger),
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock, runs preflight checks, and launches the
// worker pool and HTTP listener.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("prepare lock dir: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another subforge daemon instance is already running")
	}

	preflight.LogResults(d.logger, preflight.Run(d.cfg))

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.scheduler.Start(runCtx)
	if err := d.server.Start(runCtx); err != nil {
		cancel()
		d.scheduler.Stop()
		_ = d.lock.Unlock()
		d.cancel = nil
		return fmt.Errorf("start api server: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("subforge daemon started",
		logging.String("bind", d.cfg.BindAddress()),
		logging.String("lock", d.lockPath),
	)
	return nil
}

// Stop shuts down the listener, drains the worker pool, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.server.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.scheduler.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("subforge daemon stopped")
}

// LockPath returns the instance lock file location.
func (d *Daemon) LockPath() string {
	return d.lockPath
}
