// Package enrich derives lightweight NLP features from message bodies.
package enrich

import (
	"strings"

	"github.com/jdkato/prose/v2"
	"github.com/jonreiter/govader"
	"go.uber.org/zap"

	"github.com/tjsasakifln/Inbound/internal/core"
)

// Analyzer computes sentiment polarity and extracts nouns and adjectives
// from free text. Failures degrade to empty features: enrichment never
// blocks the pipeline.
type Analyzer struct {
	sentiment *govader.SentimentIntensityAnalyzer
	logger    *zap.Logger
}

// NewAnalyzer creates an analyzer. The VADER lexicon is loaded once and
// shared across calls.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	return &Analyzer{
		sentiment: govader.NewSentimentIntensityAnalyzer(),
		logger:    logger,
	}
}

// Enrich returns the compound sentiment polarity in [-1, 1] and a map of
// salient terms to their part-of-speech tags. Only nouns ("NN" tags) and
// adjectives ("JJ" tags) are kept.
func (a *Analyzer) Enrich(body string) core.Enrichment {
	if strings.TrimSpace(body) == "" {
		return core.Enrichment{Terms: map[string]string{}}
	}

	polarity := a.sentiment.PolarityScores(body).Compound

	terms := map[string]string{}
	doc, err := prose.NewDocument(body, prose.WithExtraction(false))
	if err != nil {
		a.logger.Warn("term extraction failed", zap.Error(err))
		return core.Enrichment{Polarity: polarity, Terms: terms}
	}
	for _, tok := range doc.Tokens() {
		if strings.HasPrefix(tok.Tag, "NN") || strings.HasPrefix(tok.Tag, "JJ") {
			terms[tok.Text] = tok.Tag
		}
	}

	return core.Enrichment{Polarity: polarity, Terms: terms}
}
