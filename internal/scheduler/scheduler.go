// Package scheduler admits transcription requests and dispatches accepted
// jobs to a fixed pool of background workers over a bounded queue.
package scheduler

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"subforge/internal/config"
	"subforge/internal/logging"
	"subforge/internal/pathmap"
)

const queueCapacity = 64

// Request is a caller-submitted transcription request.
type Request struct {
	Title             string
	ItemID            string
	DownloadURL       string
	FilePath          string
	OverwriteExisting bool
}

// Job is an admitted request with its resolved filesystem paths.
type Job struct {
	ID           string
	Request      Request
	MediaPath    string
	SubtitlePath string
}

// Outcome classifies the admission decision for a request.
type Outcome int

const (
	// OutcomeAccepted means the job was queued for background processing.
	OutcomeAccepted Outcome = iota
	// OutcomeDeclined means a subtitle already exists and overwrite is off.
	OutcomeDeclined
	// OutcomeNotFound means the mapped media path does not exist.
	OutcomeNotFound
)

// Decision reports the admission outcome with the paths it was based on.
type Decision struct {
	Outcome      Outcome
	JobID        string
	MediaPath    string
	SubtitlePath string
}

// Handler processes one admitted job. Implementations must not panic and
// must report failures through their own logging; the scheduler never
// retries.
type Handler interface {
	Handle(ctx context.Context, job Job)
}

// Scheduler owns the job queue and worker pool.
type Scheduler struct {
	cfg     *config.Config
	mapper  *pathmap.Mapper
	handler Handler
	logger  *slog.Logger

	jobs chan Job
	wg   sync.WaitGroup
}

// New constructs a scheduler. Workers do not run until Start is called.
func New(cfg *config.Config, handler Handler, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		mapper:  pathmap.NewMapper(cfg.PathMappings),
		handler: handler,
		logger:  logging.NewComponentLogger(logger, "scheduler"),
		jobs:    make(chan Job, queueCapacity),
	}
}

// Start launches the worker pool. The pool size is fixed at
// max_concurrent_jobs for the life of the process.
func (s *Scheduler) Start(ctx context.Context) {
	workers := s.cfg.MaxConcurrentJobs
	s.logger.Info("starting workers", logging.Int("count", workers))
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.work(ctx)
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	close(s.jobs)
	s.wg.Wait()
}

func (s *Scheduler) work(ctx context.Context) {
	defer s.wg.Done()
	for job := range s.jobs {
		if ctx.Err() != nil {
			s.logger.Info("dropping queued job on shutdown",
				logging.String(logging.FieldJobID, job.ID),
				logging.String(logging.FieldItemID, job.Request.ItemID),
			)
			continue
		}
		s.handler.Handle(ctx, job)
	}
}

// Submit decides whether a request becomes a job. Accepted jobs are placed on
// the queue; the call blocks only while the queue is full.
func (s *Scheduler) Submit(req Request) Decision {
	mediaPath := s.mapper.Resolve(req.FilePath)
	subtitlePath := SubtitlePath(mediaPath, s.cfg.SRTSuffix)

	if _, err := os.Stat(mediaPath); err != nil {
		s.logger.Warn("media file not found after mapping",
			logging.String(logging.FieldItemID, req.ItemID),
			logging.String("media_path", mediaPath),
		)
		return Decision{Outcome: OutcomeNotFound, MediaPath: mediaPath, SubtitlePath: subtitlePath}
	}

	allowOverwrite := s.cfg.OverwriteExisting || req.OverwriteExisting
	if _, err := os.Stat(subtitlePath); err == nil && !allowOverwrite {
		s.logger.Info("subtitle already exists, declining",
			logging.String(logging.FieldItemID, req.ItemID),
			logging.String("subtitle_path", subtitlePath),
		)
		return Decision{Outcome: OutcomeDeclined, MediaPath: mediaPath, SubtitlePath: subtitlePath}
	}

	job := Job{
		ID:           uuid.NewString(),
		Request:      req,
		MediaPath:    mediaPath,
		SubtitlePath: subtitlePath,
	}
	s.jobs <- job
	s.logger.Info("job accepted",
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldItemID, req.ItemID),
		logging.String("media_path", mediaPath),
	)
	return Decision{Outcome: OutcomeAccepted, JobID: job.ID, MediaPath: mediaPath, SubtitlePath: subtitlePath}
}

// SubtitlePath derives the sidecar subtitle path for a media file: the media
// stem plus the configured suffix, in the same directory.
func SubtitlePath(mediaPath, suffix string) string {
	base := filepath.Base(mediaPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(mediaPath), stem+suffix)
}
