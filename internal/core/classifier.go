package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tjsasakifln/Inbound/internal/metrics"
)

// Classifier wraps the external scoring backend with a content-keyed
// response cache and an audit trail. Scoring failures never escape as
// panics or unhandled errors: the classifier always returns a usable
// result, degrading to (0.0, NEW) when the backend is unavailable, and
// reports the failure through the error so the pipeline can decide
// whether to retry.
type Classifier struct {
	scorer       ScoringClient
	cache        ScoreCache
	audit        AuditSink
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
	timeout      time.Duration
}

// NewClassifier creates a classifier over the given scoring backend.
func NewClassifier(
	scorer ScoringClient,
	cache ScoreCache,
	audit AuditSink,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
	timeout time.Duration,
) *Classifier {
	return &Classifier{
		scorer:       scorer,
		cache:        cache,
		audit:        audit,
		logger:       logger,
		cacheEnabled: cacheEnabled,
		cacheTTL:     cacheTTL,
		timeout:      timeout,
	}
}

// Classify returns the score and stage for a message. A cache hit
// returns without touching the backend or the audit trail. A miss calls
// the backend under a bounded timeout, records an audit entry whether
// the call succeeded or not, and caches only successful results.
func (c *Classifier) Classify(ctx context.Context, subject, body string) (*ScoreResult, error) {
	key := ContentKey(subject, body)

	if c.cacheEnabled {
		if entry, err := c.cache.Get(ctx, key); err == nil {
			metrics.ScoreCacheHits.WithLabelValues("hit").Inc()
			c.logger.Debug("score cache hit", zap.String("key", key))
			return &ScoreResult{
				Score:  entry.Score,
				Stage:  entry.Stage,
				Model:  "cache",
				Cached: true,
			}, nil
		}
		metrics.ScoreCacheHits.WithLabelValues("miss").Inc()
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := c.scorer.ScoreMessage(callCtx, subject, body)
	metrics.ScoringLatency.WithLabelValues(c.scorer.Model()).Observe(time.Since(start).Seconds())

	if err == nil && (raw.Score < 0 || raw.Score > 1 || !raw.Stage.Valid()) {
		err = fmt.Errorf("scoring response out of range: score=%v stage=%q", raw.Score, raw.Stage)
	}

	if err != nil {
		c.appendAudit(ctx, &AuditEntry{
			Prompt:   fmt.Sprintf("Subject: %s\nBody: %s", subject, body),
			Response: fmt.Sprintf("ERROR: %v", err),
			Model:    c.scorer.Model(),
		})
		c.logger.Warn("scoring failed, using default score",
			zap.String("model", c.scorer.Model()),
			zap.Error(err))
		return &ScoreResult{Score: 0.0, Stage: StageNew, Model: c.scorer.Model()}, err
	}

	c.appendAudit(ctx, &AuditEntry{
		Prompt:   raw.Prompt,
		Response: raw.Response,
		Model:    raw.Model,
	})

	if c.cacheEnabled {
		now := time.Now()
		entry := &CacheEntry{
			Key:       key,
			Score:     raw.Score,
			Stage:     raw.Stage,
			CreatedAt: now,
			ExpiresAt: now.Add(c.cacheTTL),
		}
		if cacheErr := c.cache.Set(ctx, entry); cacheErr != nil {
			c.logger.Error("failed to update score cache", zap.Error(cacheErr))
		}
	}

	return &ScoreResult{Score: raw.Score, Stage: raw.Stage, Model: raw.Model}, nil
}

func (c *Classifier) appendAudit(ctx context.Context, entry *AuditEntry) {
	entry.ID = uuid.New().String()
	entry.CreatedAt = time.Now().UTC()
	if err := c.audit.Append(ctx, entry); err != nil {
		c.logger.Error("failed to append audit entry", zap.Error(err))
	}
}
