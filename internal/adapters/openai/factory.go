package openai

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

// NewFactory creates a new factory for OpenAI scoring clients
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// CreateScoringClient creates a new OpenAI scoring client
func (f *Factory) CreateScoringClient() (core.ScoringClient, error) {
	openaiCfg := f.cfg.GetOpenAI()

	return NewScoringClient(
		openaiCfg.APIKey,
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.MaxBodySize,
		f.logger,
	), nil
}
