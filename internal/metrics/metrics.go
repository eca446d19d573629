// Package metrics exposes the pipeline's Prometheus series.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProcessingTotal counts terminal outcomes per inbound message:
	// processed, deduplicated, failed, rejected.
	ProcessingTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbound_email_processing_total",
			Help: "Total inbound messages by terminal outcome",
		},
		[]string{"status"},
	)

	// LeadThroughput counts created leads by stage.
	LeadThroughput = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbound_lead_throughput_total",
			Help: "Total leads created by stage",
		},
		[]string{"stage"},
	)

	// ScoringLatency observes external scoring call duration per model,
	// including failed calls.
	ScoringLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inbound_scoring_latency_seconds",
			Help:    "External scoring call latency",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)

	// ScoreCacheHits counts cache lookups by result.
	ScoreCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbound_score_cache_lookups_total",
			Help: "Score cache lookups by result",
		},
		[]string{"result"}, // "hit" or "miss"
	)

	// DeadLetters counts messages routed to the dead-letter path.
	DeadLetters = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inbound_dead_letter_total",
			Help: "Total messages routed to the dead-letter path",
		},
	)
)
