package whisper

import (
	"log/slog"
	"sync"

	"subforge/internal/config"
	"subforge/internal/logging"
)

// Provider constructs the transcription engine exactly once per process.
// Model loading parameters are fixed at daemon startup, so every job shares
// the same engine instance.
type Provider struct {
	cfg    *config.Config
	logger *slog.Logger

	once   sync.Once
	engine Transcriber
}

// NewProvider prepares a provider without building the engine yet.
func NewProvider(cfg *config.Config, logger *slog.Logger) *Provider {
	return &Provider{cfg: cfg, logger: logger}
}

// Engine returns the shared transcriber, building it on first use.
func (p *Provider) Engine() Transcriber {
	p.once.Do(func() {
		if p.engine != nil {
			return
		}
		engine := NewEngine(p.cfg, p.logger)
		if p.logger != nil {
			p.logger.Info("transcription engine initialized",
				logging.String("model", engine.Model()),
				logging.String("device", engine.Device()),
				logging.String("compute_type", engine.ComputeType()),
			)
		}
		p.engine = engine
	})
	return p.engine
}

// SetEngine overrides the engine before first use (for testing).
func (p *Provider) SetEngine(engine Transcriber) {
	p.once.Do(func() { p.engine = engine })
}
