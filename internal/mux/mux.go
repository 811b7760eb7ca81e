// Package mux embeds finished subtitle files into their media containers
// with ffmpeg, replacing the original file atomically on success.
package mux

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"subforge/internal/config"
	"subforge/internal/language"
	"subforge/internal/logging"
	"subforge/internal/services"
)

type commandRunner func(ctx context.Context, name string, args ...string) error

// Muxer embeds subtitle tracks into media containers using ffmpeg.
type Muxer struct {
	enabled    bool
	ffmpegPath string
	language   string
	codecs     map[string]string
	logger     *slog.Logger
	run        commandRunner
}

// NewMuxer constructs a muxer from the service configuration.
func NewMuxer(cfg *config.Config, logger *slog.Logger) *Muxer {
	return &Muxer{
		enabled:    cfg.MuxSubtitles,
		ffmpegPath: cfg.FFmpegPath,
		language:   cfg.Language,
		codecs:     cfg.SubtitleCodecMap,
		logger:     logging.NewComponentLogger(logger, "muxer"),
		run:        defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (m *Muxer) WithCommandRunner(r commandRunner) {
	if m != nil && r != nil {
		m.run = r
	}
}

// Mux embeds subtitlePath into mediaPath in place. Muxing is best effort:
// when it is disabled, the subtitle file is missing, or the container has no
// codec mapping, the call logs why and returns nil, leaving the sidecar SRT
// as the deliverable. A real ffmpeg failure is returned for the caller to
// record; the original media file is never modified on failure.
func (m *Muxer) Mux(ctx context.Context, mediaPath, subtitlePath, itemID string) error {
	if !m.enabled {
		return nil
	}

	if _, err := os.Stat(subtitlePath); err != nil {
		m.logger.Warn("subtitle file missing, skipping mux",
			logging.String(logging.FieldItemID, itemID),
			logging.String("subtitle_path", subtitlePath),
		)
		return nil
	}

	ext := filepath.Ext(mediaPath)
	codec, ok := m.codecs[strings.ToLower(ext)]
	if !ok {
		m.logger.Warn("no subtitle codec for container, skipping mux",
			logging.String(logging.FieldItemID, itemID),
			logging.String("extension", ext),
		)
		return nil
	}

	stem := strings.TrimSuffix(mediaPath, ext)
	tmpPath := stem + ".muxing" + ext

	args := m.buildArgs(mediaPath, subtitlePath, codec, tmpPath)
	m.logger.Debug("executing ffmpeg mux",
		logging.String(logging.FieldItemID, itemID),
		logging.String("media_path", mediaPath),
		logging.String("codec", codec),
	)

	if err := m.run(ctx, m.ffmpegPath, args...); err != nil {
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrMux, "muxer", "ffmpeg", filepath.Base(mediaPath), err)
	}

	if _, err := os.Stat(tmpPath); err != nil {
		return services.Wrap(services.ErrMux, "muxer", "ffmpeg", "no output produced", err)
	}

	if err := os.Rename(tmpPath, mediaPath); err != nil {
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrMux, "muxer", "replace original", filepath.Base(mediaPath), err)
	}

	m.logger.Info("subtitles muxed into container",
		logging.String(logging.FieldEventType, "subtitle_mux_complete"),
		logging.String(logging.FieldItemID, itemID),
		logging.String("media_path", mediaPath),
		logging.String("codec", codec),
	)
	return nil
}

// buildArgs constructs the ffmpeg invocation. Existing subtitle streams are
// dropped in favor of the new track; all other streams are stream-copied.
func (m *Muxer) buildArgs(mediaPath, subtitlePath, codec, outputPath string) []string {
	return []string{
		"-y",
		"-i", mediaPath,
		"-i", subtitlePath,
		"-map", "0",
		"-map", "-0:s",
		"-map", "1:0",
		"-c", "copy",
		"-c:s", codec,
		"-metadata:s:s:0", "language=" + language.ToISO3(m.language),
		outputPath,
	}
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
