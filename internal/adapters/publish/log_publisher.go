package publish

import (
	"context"

	"go.uber.org/zap"

	"github.com/tjsasakifln/Inbound/internal/core"
)

// LogPublisher logs lead changes instead of broadcasting them. Used by
// the one-shot CLI where no broker is available.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a log-only publisher
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the lead change
func (p *LogPublisher) Publish(ctx context.Context, lead *core.Lead) error {
	p.logger.Info("lead update",
		zap.String("lead_id", lead.ID),
		zap.String("email_id", lead.EmailID),
		zap.Float64("score", lead.Score),
		zap.String("stage", string(lead.Stage)))
	return nil
}
