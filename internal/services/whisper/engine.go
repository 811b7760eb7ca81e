package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"subforge/internal/config"
	"subforge/internal/logging"
	"subforge/internal/services"
	"subforge/internal/subtitle"
)

const (
	beamSize             = "5"
	vadMinSilenceMS      = "1000"
	defaultInitialPrompt = "こんにちは。これは動画の会話を正確に書き起こしたものです。"
)

// Info describes what the engine detected about the media as a whole.
type Info struct {
	Language            string
	LanguageProbability float64
	Duration            float64
}

// Result bundles detection info with the ordered segment sequence.
type Result struct {
	Info     Info
	Segments iter.Seq[subtitle.Segment]
}

// Transcriber produces timed segments for a media file.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string) (Result, error)
}

// Engine invokes the whisper CLI with fixed decode parameters and parses its
// JSON output.
type Engine struct {
	binary        string
	model         string
	language      string
	device        string
	computeType   string
	initialPrompt string
	logger        *slog.Logger
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewEngine constructs an engine from the service configuration.
func NewEngine(cfg *config.Config, logger *slog.Logger) *Engine {
	return &Engine{
		binary:        cfg.WhisperPath,
		model:         cfg.Model,
		language:      cfg.Language,
		device:        cfg.Device,
		computeType:   cfg.ComputeType,
		initialPrompt: defaultInitialPrompt,
		logger:        logging.NewComponentLogger(logger, "whisper"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *Engine) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	e.commandRunner = runner
}

// Model returns the configured model name for logging.
func (e *Engine) Model() string { return e.model }

// Device returns the configured inference device for logging.
func (e *Engine) Device() string { return e.device }

// ComputeType returns the configured precision for logging.
func (e *Engine) ComputeType() string { return e.computeType }

// Transcribe runs the whisper CLI against mediaPath and returns the parsed
// result. The segment sequence is safe to consume exactly once.
func (e *Engine) Transcribe(ctx context.Context, mediaPath string) (Result, error) {
	var result Result

	if mediaPath == "" {
		return result, services.Wrap(services.ErrValidation, "whisper", "transcribe", "media path required", nil)
	}

	workDir, err := os.MkdirTemp("", "subforge-whisper-")
	if err != nil {
		return result, services.Wrap(services.ErrEngine, "whisper", "transcribe", "create work dir", err)
	}
	defer os.RemoveAll(workDir)

	args := e.buildArgs(mediaPath, workDir)
	if err := e.run(ctx, e.binary, args...); err != nil {
		return result, services.Wrap(services.ErrEngine, "whisper", "transcribe", filepath.Base(mediaPath), err)
	}

	stem := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	payload, err := loadPayload(filepath.Join(workDir, stem+".json"))
	if err != nil {
		return result, services.Wrap(services.ErrEngine, "whisper", "parse output", filepath.Base(mediaPath), err)
	}

	result.Info = Info{
		Language:            payload.Language,
		LanguageProbability: payload.LanguageProbability,
		Duration:            payload.Duration,
	}
	if result.Info.Duration <= 0 && len(payload.Segments) > 0 {
		result.Info.Duration = payload.Segments[len(payload.Segments)-1].End
	}

	segments := make([]subtitle.Segment, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		segments = append(segments, subtitle.Segment{Start: seg.Start, End: seg.End, Text: seg.Text})
	}
	result.Segments = slices.Values(segments)
	return result, nil
}

// buildArgs constructs the whisper CLI invocation. Decode parameters are
// deliberately not configurable; they are tuned for long-form media.
func (e *Engine) buildArgs(mediaPath, outputDir string) []string {
	args := []string{
		mediaPath,
		"--model", e.model,
		"--device", e.device,
		"--compute_type", e.computeType,
		"--beam_size", beamSize,
		"--vad_filter", "True",
		"--vad_min_silence_duration_ms", vadMinSilenceMS,
		"--condition_on_previous_text", "False",
		"--output_format", "json",
		"--output_dir", outputDir,
		"--verbose", "False",
	}
	if e.language != "" {
		args = append(args, "--language", e.language)
	}
	if e.initialPrompt != "" {
		args = append(args, "--initial_prompt", e.initialPrompt)
	}
	return args
}

func (e *Engine) run(ctx context.Context, name string, args ...string) error {
	if e.commandRunner != nil {
		return e.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

type payloadSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type outputPayload struct {
	Segments            []payloadSegment `json:"segments"`
	Language            string           `json:"language"`
	LanguageProbability float64          `json:"language_probability"`
	Duration            float64          `json:"duration"`
}

func loadPayload(jsonPath string) (outputPayload, error) {
	var payload outputPayload
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return payload, err
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("parse whisper json: %w", err)
	}
	return payload, nil
}
