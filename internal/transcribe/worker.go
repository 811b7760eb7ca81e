// Package transcribe runs admitted jobs end to end: transcription, subtitle
// serialization, and optional muxing. Failures are logged and never
// propagate; a failed job must not take the service down.
package transcribe

import (
	"context"
	"log/slog"
	"os"

	"subforge/internal/config"
	"subforge/internal/language"
	"subforge/internal/logging"
	"subforge/internal/mux"
	"subforge/internal/scheduler"
	"subforge/internal/services"
	"subforge/internal/services/whisper"
	"subforge/internal/subtitle"
)

// Worker processes one job at a time. Multiple workers share the same
// provider-built engine.
type Worker struct {
	cfg      *config.Config
	provider *whisper.Provider
	writer   *subtitle.Writer
	muxer    *mux.Muxer
	logger   *slog.Logger
}

// NewWorker wires the transcription pipeline for the scheduler's pool.
func NewWorker(cfg *config.Config, provider *whisper.Provider, logger *slog.Logger) *Worker {
	return &Worker{
		cfg:      cfg,
		provider: provider,
		writer:   subtitle.NewWriter(logger, cfg.HallucinationPhrases),
		muxer:    mux.NewMuxer(cfg, logger),
		logger:   logging.NewComponentLogger(logger, "transcribe"),
	}
}

// Muxer exposes the worker's muxer (for test command injection).
func (w *Worker) Muxer() *mux.Muxer { return w.muxer }

// Handle runs a job. Conditions are revalidated here because queue wait time
// can be long: a subtitle may have appeared or the media may have vanished
// since admission.
func (w *Worker) Handle(ctx context.Context, job scheduler.Job) {
	itemID := job.Request.ItemID

	allowOverwrite := w.cfg.OverwriteExisting || job.Request.OverwriteExisting
	if _, err := os.Stat(job.SubtitlePath); err == nil && !allowOverwrite {
		w.logger.Info("subtitle appeared while queued, skipping",
			logging.String(logging.FieldJobID, job.ID),
			logging.String(logging.FieldItemID, itemID),
			logging.String("subtitle_path", job.SubtitlePath),
		)
		return
	}
	if _, err := os.Stat(job.MediaPath); err != nil {
		w.logFailure(job, services.Wrap(services.ErrNotFound, "transcribe", "stat media", job.MediaPath, err))
		return
	}

	w.logger.Info("transcribing",
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldItemID, itemID),
		logging.String("media_path", job.MediaPath),
	)

	result, err := w.provider.Engine().Transcribe(ctx, job.MediaPath)
	if err != nil {
		w.logFailure(job, err)
		return
	}

	w.logger.Info("language detected",
		logging.String(logging.FieldItemID, itemID),
		logging.String("language", result.Info.Language),
		logging.String("language_name", language.DisplayName(result.Info.Language)),
		logging.Float64("probability", result.Info.LanguageProbability),
	)

	if err := w.writer.Write(result.Segments, job.SubtitlePath, itemID, result.Info.Duration); err != nil {
		w.logFailure(job, services.Wrap(services.ErrEngine, "transcribe", "write subtitle", job.SubtitlePath, err))
		return
	}
	w.logger.Info("subtitle written",
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldItemID, itemID),
		logging.String("subtitle_path", job.SubtitlePath),
	)

	if err := w.muxer.Mux(ctx, job.MediaPath, job.SubtitlePath, itemID); err != nil {
		// The sidecar subtitle is already on disk; a mux failure is
		// recorded but does not fail the job.
		w.logFailure(job, err)
	}
}

func (w *Worker) logFailure(job scheduler.Job, err error) {
	w.logger.Error("job failed",
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldItemID, job.Request.ItemID),
		logging.String("error_kind", services.Kind(err)),
		logging.Error(err),
	)
}
