package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tjsasakifln/Inbound/internal/adapters/bedrock"
	"github.com/tjsasakifln/Inbound/internal/adapters/gemini"
	"github.com/tjsasakifln/Inbound/internal/adapters/openai"
	"github.com/tjsasakifln/Inbound/internal/config"
	"github.com/tjsasakifln/Inbound/internal/core"
)

// ScoringFactory creates scoring clients
type ScoringFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewScoringFactory creates a new scoring factory
func NewScoringFactory(cfg *config.Config, logger *zap.Logger) *ScoringFactory {
	return &ScoringFactory{cfg: cfg, logger: logger}
}

// CreateScoringClient creates a new scoring client based on the configuration
func (f *ScoringFactory) CreateScoringClient() (core.ScoringClient, error) {
	provider := f.cfg.GetString("scoring.provider")

	switch provider {
	case "openai":
		return openai.NewFactory(f.cfg, f.logger).CreateScoringClient()
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger).CreateScoringClient()
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger).CreateScoringClient()
	default:
		return nil, fmt.Errorf("unsupported scoring provider: %s", provider)
	}
}
