package gemini

import (
	"go.uber.org/zap"

	"github.com/tjsasakifln/Inbound/internal/config"
	"github.com/tjsasakifln/Inbound/internal/core"
)

// Factory creates new instances of ScoringClient
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for Gemini scoring clients
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// CreateScoringClient creates a new Gemini scoring client
func (f *Factory) CreateScoringClient() (core.ScoringClient, error) {
	geminiCfg := f.cfg.GetGemini()

	return NewScoringClient(
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.MaxBodySize,
		f.logger,
	)
}
