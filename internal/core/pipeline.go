package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tjsasakifln/Inbound/internal/metrics"
	"github.com/tjsasakifln/Inbound/internal/resilience"
)

// Pipeline runs an inbound message through validation, duplicate
// matching, scoring, enrichment, persistence and publication. Transient
// failures are retried with backoff; once attempts are exhausted the
// message is routed to the dead-letter sink.
type Pipeline struct {
	matcher     DuplicateMatcher
	classifier  *Classifier
	enricher    Enricher
	store       LeadStore
	publisher   Publisher
	deadLetters DeadLetterSink
	logger      *zap.Logger
	retry       resilience.Config
	failOpen    bool
}

// NewPipeline wires the processing stages together.
func NewPipeline(
	matcher DuplicateMatcher,
	classifier *Classifier,
	enricher Enricher,
	store LeadStore,
	publisher Publisher,
	deadLetters DeadLetterSink,
	logger *zap.Logger,
	retry resilience.Config,
	failOpen bool,
) *Pipeline {
	return &Pipeline{
		matcher:     matcher,
		classifier:  classifier,
		enricher:    enricher,
		store:       store,
		publisher:   publisher,
		deadLetters: deadLetters,
		logger:      logger,
		retry:       retry,
		failOpen:    failOpen,
	}
}

// ProcessMessage takes a raw inbound message to a terminal outcome. It
// always returns a result; the error is the underlying cause when the
// outcome is failed or rejected.
func (p *Pipeline) ProcessMessage(ctx context.Context, msg *InboundMessage) (*TaskResult, error) {
	logger := p.logger.With(
		zap.String("correlation_id", uuid.New().String()),
		zap.String("email_id", msg.EmailID))

	if err := msg.Validate(); err != nil {
		logger.Warn("rejecting invalid message", zap.Error(err))
		metrics.ProcessingTotal.WithLabelValues(string(TaskRejected)).Inc()
		return &TaskResult{Status: TaskRejected, Attempts: 0, Err: err}, err
	}

	attempts := 0
	cfg := p.retry
	cfg.OnRetry = func(attempt int, err error) {
		logger.Warn("retrying message",
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	result, err := resilience.Do(ctx, cfg, func(ctx context.Context) (*TaskResult, error) {
		attempts++
		return p.processOnce(ctx, msg, logger)
	})
	if err != nil {
		logger.Error("message failed after retries",
			zap.Int("attempts", attempts),
			zap.Error(err))
		p.pushDeadLetter(ctx, msg, attempts, err, logger)
		metrics.ProcessingTotal.WithLabelValues(string(TaskFailed)).Inc()
		return &TaskResult{Status: TaskFailed, Attempts: attempts, Err: err}, err
	}

	result.Attempts = attempts
	metrics.ProcessingTotal.WithLabelValues(string(result.Status)).Inc()
	return result, nil
}

func (p *Pipeline) processOnce(ctx context.Context, msg *InboundMessage, logger *zap.Logger) (*TaskResult, error) {
	existing, err := p.store.FindAll(ctx)
	if err != nil {
		return nil, resilience.Transient(fmt.Errorf("failed to list leads: %w", err))
	}

	match, err := p.matcher.Match(ctx, msg, existing)
	if err != nil {
		return nil, fmt.Errorf("duplicate matching failed: %w", err)
	}
	if match.Duplicate {
		logger.Info("message matched an existing lead",
			zap.String("matched_id", match.LeadID),
			zap.Float64("sender_similarity", match.SenderSimilarity),
			zap.Float64("subject_similarity", match.SubjectSimilarity))
		return &TaskResult{Status: TaskDeduplicated, MatchedID: match.LeadID}, nil
	}

	score, err := p.classifier.Classify(ctx, msg.Subject, msg.Body)
	if err != nil && !p.failOpen {
		return nil, resilience.Transient(fmt.Errorf("scoring failed: %w", err))
	}

	enrichment := p.enricher.Enrich(msg.Body)

	source := msg.Source
	if source == "" {
		source = SourceEmail
	}

	lead := &Lead{
		ID:        uuid.New().String(),
		EmailID:   msg.EmailID,
		Sender:    msg.Sender,
		Subject:   msg.Subject,
		Body:      msg.Body,
		Source:    source,
		Score:     score.Score,
		Stage:     score.Stage,
		Intent:    strconv.FormatFloat(enrichment.Polarity, 'f', -1, 64),
		Entities:  enrichment.Terms,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := p.store.Create(ctx, lead); err != nil {
		if errors.Is(err, ErrConflict) {
			stored, getErr := p.store.GetByEmailID(ctx, msg.EmailID)
			if getErr != nil {
				return nil, resilience.Transient(fmt.Errorf("conflict on %s but lookup failed: %w", msg.EmailID, getErr))
			}
			logger.Info("lead already stored, treating as success",
				zap.String("lead_id", stored.ID))
			lead = stored
		} else {
			return nil, resilience.Transient(fmt.Errorf("failed to store lead: %w", err))
		}
	}

	if err := p.publisher.Publish(ctx, lead); err != nil {
		// Publication is best effort: the lead is durable at this
		// point and downstream consumers catch up on their own.
		logger.Warn("failed to publish lead update",
			zap.String("lead_id", lead.ID),
			zap.Error(err))
	}

	metrics.LeadThroughput.WithLabelValues(string(lead.Stage)).Inc()
	logger.Info("lead processed",
		zap.String("lead_id", lead.ID),
		zap.Float64("score", lead.Score),
		zap.String("stage", string(lead.Stage)),
		zap.Bool("cached_score", score.Cached))

	return &TaskResult{Status: TaskProcessed, LeadID: lead.ID}, nil
}

func (p *Pipeline) pushDeadLetter(ctx context.Context, msg *InboundMessage, attempts int, cause error, logger *zap.Logger) {
	dl := &DeadLetter{
		EmailID:  msg.EmailID,
		Sender:   msg.Sender,
		Subject:  msg.Subject,
		Reason:   cause.Error(),
		Attempts: attempts,
		FailedAt: time.Now().UTC(),
	}
	if err := p.deadLetters.Push(ctx, dl); err != nil {
		logger.Error("failed to push dead letter", zap.Error(err))
		return
	}
	metrics.DeadLetters.Inc()
}
