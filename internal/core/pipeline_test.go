package core_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tjsasakifln/Inbound/internal/adapters/audit"
	"github.com/tjsasakifln/Inbound/internal/adapters/store"
	"github.com/tjsasakifln/Inbound/internal/core"
	"github.com/tjsasakifln/Inbound/internal/dedup"
	"github.com/tjsasakifln/Inbound/internal/resilience"
)

type stubEnricher struct {
	polarity float64
	terms    map[string]string
}

func (e *stubEnricher) Enrich(body string) core.Enrichment {
	return core.Enrichment{Polarity: e.polarity, Terms: e.terms}
}

type recordingPublisher struct {
	mu    sync.Mutex
	leads []core.Lead
	err   error
}

func (p *recordingPublisher) Publish(ctx context.Context, lead *core.Lead) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.leads = append(p.leads, *lead)
	return nil
}

func (p *recordingPublisher) published() []core.Lead {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]core.Lead, len(p.leads))
	copy(out, p.leads)
	return out
}

type recordingDeadLetters struct {
	mu      sync.Mutex
	letters []core.DeadLetter
}

func (s *recordingDeadLetters) Push(ctx context.Context, dl *core.DeadLetter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.letters = append(s.letters, *dl)
	return nil
}

type neverMatches struct{}

func (neverMatches) Match(ctx context.Context, msg *core.InboundMessage, existing []core.Lead) (*core.MatchResult, error) {
	return &core.MatchResult{}, nil
}

type pipelineFixture struct {
	pipeline    *core.Pipeline
	scorer      *stubScorer
	store       *store.MemoryStore
	publisher   *recordingPublisher
	deadLetters *recordingDeadLetters
	audit       *audit.MemorySink
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	matcher  core.DuplicateMatcher
	failOpen bool
	scorer   *stubScorer
}

func newPipelineFixture(t *testing.T, opts ...fixtureOption) *pipelineFixture {
	t.Helper()

	cfg := &fixtureConfig{
		matcher: dedup.NewMatcher(80, 70),
		scorer:  &stubScorer{score: 0.9, stage: core.StageQualified},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	sink := audit.NewMemorySink()
	classifier := core.NewClassifier(cfg.scorer, nil, sink, zap.NewNop(), false, 0, time.Second)

	leadStore := store.NewMemoryStore()
	publisher := &recordingPublisher{}
	deadLetters := &recordingDeadLetters{}

	pipeline := core.NewPipeline(
		cfg.matcher,
		classifier,
		&stubEnricher{polarity: 0.4, terms: map[string]string{"pricing": "NN"}},
		leadStore,
		publisher,
		deadLetters,
		zap.NewNop(),
		resilience.Config{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond, Multiplier: 2},
		cfg.failOpen,
	)

	return &pipelineFixture{
		pipeline:    pipeline,
		scorer:      cfg.scorer,
		store:       leadStore,
		publisher:   publisher,
		deadLetters: deadLetters,
		audit:       sink,
	}
}

func withFailOpen() fixtureOption {
	return func(cfg *fixtureConfig) { cfg.failOpen = true }
}

func withMatcher(m core.DuplicateMatcher) fixtureOption {
	return func(cfg *fixtureConfig) { cfg.matcher = m }
}

func withScorer(s *stubScorer) fixtureOption {
	return func(cfg *fixtureConfig) { cfg.scorer = s }
}

func TestPipeline_ProcessesNovelMessage(t *testing.T) {
	f := newPipelineFixture(t)
	msg := &core.InboundMessage{
		EmailID: "msg-1",
		Sender:  "alice@example.com",
		Subject: "Pricing question",
		Body:    "How much for 50 seats?",
	}

	result, err := f.pipeline.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, core.TaskProcessed, result.Status)
	assert.Equal(t, 1, result.Attempts)
	assert.NotEmpty(t, result.LeadID)

	lead, err := f.store.GetByEmailID(context.Background(), "msg-1")
	require.NoError(t, err)
	assert.Equal(t, 0.9, lead.Score)
	assert.Equal(t, core.StageQualified, lead.Stage)
	assert.Equal(t, core.SourceEmail, lead.Source)
	assert.Equal(t, "0.4", lead.Intent)
	assert.Equal(t, map[string]string{"pricing": "NN"}, lead.Entities)

	published := f.publisher.published()
	require.Len(t, published, 1)
	assert.Equal(t, lead.ID, published[0].ID)
}

func TestPipeline_DuplicateShortCircuits(t *testing.T) {
	f := newPipelineFixture(t)
	first := &core.InboundMessage{
		EmailID: "msg-1",
		Sender:  "alice@example.com",
		Subject: "Pricing question",
		Body:    "How much for 50 seats?",
	}
	result, err := f.pipeline.ProcessMessage(context.Background(), first)
	require.NoError(t, err)
	require.Equal(t, core.TaskProcessed, result.Status)

	// Near-identical resend under a fresh email ID.
	second := &core.InboundMessage{
		EmailID: "msg-2",
		Sender:  "alice@example.com",
		Subject: "Pricing question!",
		Body:    "Following up on my question.",
	}
	dup, err := f.pipeline.ProcessMessage(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, core.TaskDeduplicated, dup.Status)
	assert.Equal(t, result.LeadID, dup.MatchedID)

	// No second lead, no second scoring call, no second publish.
	leads, err := f.store.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, leads, 1)
	assert.Equal(t, 1, f.scorer.calls)
	assert.Len(t, f.publisher.published(), 1)
}

func TestPipeline_RejectsMissingEmailID(t *testing.T) {
	f := newPipelineFixture(t)
	msg := &core.InboundMessage{Sender: "alice@example.com", Subject: "Hi"}

	result, err := f.pipeline.ProcessMessage(context.Background(), msg)
	require.Error(t, err)
	assert.Equal(t, core.TaskRejected, result.Status)
	assert.Equal(t, 0, result.Attempts)

	var verr *core.ValidationError
	assert.ErrorAs(t, err, &verr)

	// Rejected input never reaches the scorer or the store.
	assert.Equal(t, 0, f.scorer.calls)
	leads, err := f.store.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestPipeline_ScoringFailureRetriesThenDeadLetters(t *testing.T) {
	scorer := &stubScorer{err: errors.New("rate limited")}
	f := newPipelineFixture(t, withScorer(scorer))
	msg := &core.InboundMessage{
		EmailID: "msg-1",
		Sender:  "alice@example.com",
		Subject: "Pricing question",
		Body:    "How much?",
	}

	result, err := f.pipeline.ProcessMessage(context.Background(), msg)
	require.Error(t, err)
	assert.Equal(t, core.TaskFailed, result.Status)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 3, scorer.calls)

	f.deadLetters.mu.Lock()
	defer f.deadLetters.mu.Unlock()
	require.Len(t, f.deadLetters.letters, 1)
	assert.Equal(t, "msg-1", f.deadLetters.letters[0].EmailID)
	assert.Equal(t, 3, f.deadLetters.letters[0].Attempts)

	// Nothing durable was left behind.
	leads, ferr := f.store.FindAll(context.Background())
	require.NoError(t, ferr)
	assert.Empty(t, leads)
}

func TestPipeline_ScoringFailureFailOpenStoresDefault(t *testing.T) {
	scorer := &stubScorer{err: errors.New("rate limited")}
	f := newPipelineFixture(t, withScorer(scorer), withFailOpen())
	msg := &core.InboundMessage{
		EmailID: "msg-1",
		Sender:  "alice@example.com",
		Subject: "Pricing question",
		Body:    "How much?",
	}

	result, err := f.pipeline.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, core.TaskProcessed, result.Status)
	assert.Equal(t, 1, scorer.calls)

	lead, err := f.store.GetByEmailID(context.Background(), "msg-1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, lead.Score)
	assert.Equal(t, core.StageNew, lead.Stage)
}

func TestPipeline_ConflictIsIdempotentSuccess(t *testing.T) {
	// A matcher that never fires forces the replay through the store's
	// unique constraint instead of the fuzzy duplicate path.
	f := newPipelineFixture(t, withMatcher(neverMatches{}))
	msg := &core.InboundMessage{
		EmailID: "msg-1",
		Sender:  "alice@example.com",
		Subject: "Pricing question",
		Body:    "How much?",
	}

	first, err := f.pipeline.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)
	second, err := f.pipeline.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)

	assert.Equal(t, core.TaskProcessed, second.Status)
	assert.Equal(t, first.LeadID, second.LeadID)

	leads, err := f.store.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, leads, 1)

	// The replay still publishes the stored lead.
	assert.Len(t, f.publisher.published(), 2)
}

func TestPipeline_PublishFailureIsSwallowed(t *testing.T) {
	f := newPipelineFixture(t)
	f.publisher.err = errors.New("broker down")
	msg := &core.InboundMessage{
		EmailID: "msg-1",
		Sender:  "alice@example.com",
		Subject: "Pricing question",
		Body:    "How much?",
	}

	result, err := f.pipeline.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, core.TaskProcessed, result.Status)

	// The lead is durable even though the broadcast failed.
	_, err = f.store.GetByEmailID(context.Background(), "msg-1")
	assert.NoError(t, err)
}

func TestPipeline_SourceDefaultsToEmail(t *testing.T) {
	f := newPipelineFixture(t)
	msg := &core.InboundMessage{EmailID: "msg-1", Sender: "a@b.c", Subject: "s", Body: "b"}

	_, err := f.pipeline.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)

	lead, err := f.store.GetByEmailID(context.Background(), "msg-1")
	require.NoError(t, err)
	assert.Equal(t, core.SourceEmail, lead.Source)
}

func TestPipeline_ExplicitSourceIsKept(t *testing.T) {
	f := newPipelineFixture(t)
	msg := &core.InboundMessage{
		EmailID: "msg-1", Sender: "a@b.c", Subject: "s", Body: "b",
		Source: core.SourceWebform,
	}

	_, err := f.pipeline.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)

	lead, err := f.store.GetByEmailID(context.Background(), "msg-1")
	require.NoError(t, err)
	assert.Equal(t, core.SourceWebform, lead.Source)
}
