package dedup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjsasakifln/Inbound/internal/core"
)

func TestSimilarity_Identical(t *testing.T) {
	assert.Equal(t, 100.0, Similarity("alice@example.com", "alice@example.com"))
}

func TestSimilarity_CaseInsensitive(t *testing.T) {
	assert.Equal(t, 100.0, Similarity("Alice@Example.COM", "alice@example.com"))
}

func TestSimilarity_Scaled(t *testing.T) {
	// Ten characters, one substitution: 90 on the 0-100 scale.
	assert.InDelta(t, 90.0, Similarity("aaaaaaaaaa", "aaaaaaaaab"), 0.001)
}

func TestMatcher_EmptySnapshot(t *testing.T) {
	m := NewMatcher(80, 70)
	msg := &core.InboundMessage{Sender: "alice@example.com", Subject: "Pricing"}

	result, err := m.Match(context.Background(), msg, nil)
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
}

func TestMatcher_BothAboveThresholds(t *testing.T) {
	m := NewMatcher(80, 70)
	existing := []core.Lead{
		{ID: "lead-1", Sender: "aaaaaaaaaa", Subject: "ssssssssss"},
	}
	// One substitution in each field: 90 similarity on both.
	msg := &core.InboundMessage{Sender: "aaaaaaaaab", Subject: "sssssssssb"}

	result, err := m.Match(context.Background(), msg, existing)
	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	assert.Equal(t, "lead-1", result.LeadID)
	assert.InDelta(t, 90.0, result.SenderSimilarity, 0.001)
	assert.InDelta(t, 90.0, result.SubjectSimilarity, 0.001)
}

func TestMatcher_ExactSenderThresholdIsNovel(t *testing.T) {
	m := NewMatcher(80, 70)
	existing := []core.Lead{
		{ID: "lead-1", Sender: "aaaaaaaaaa", Subject: "ssssssssss"},
	}
	// Two substitutions over ten characters: exactly 80. The comparison
	// is strict, so an exact threshold must not match.
	msg := &core.InboundMessage{Sender: "aaaaaaaabb", Subject: "ssssssssss"}

	result, err := m.Match(context.Background(), msg, existing)
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
}

func TestMatcher_ExactSubjectThresholdIsNovel(t *testing.T) {
	m := NewMatcher(80, 70)
	existing := []core.Lead{
		{ID: "lead-1", Sender: "aaaaaaaaaa", Subject: "ssssssssss"},
	}
	// Sender matches outright, subject sits exactly at 70.
	msg := &core.InboundMessage{Sender: "aaaaaaaaaa", Subject: "sssssssbbb"}

	result, err := m.Match(context.Background(), msg, existing)
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
}

func TestMatcher_SenderAloneIsNotEnough(t *testing.T) {
	m := NewMatcher(80, 70)
	existing := []core.Lead{
		{ID: "lead-1", Sender: "alice@example.com", Subject: "Quarterly invoice"},
	}
	msg := &core.InboundMessage{Sender: "alice@example.com", Subject: "Completely unrelated"}

	result, err := m.Match(context.Background(), msg, existing)
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
}

func TestMatcher_ReturnsEarliestMatch(t *testing.T) {
	m := NewMatcher(80, 70)
	existing := []core.Lead{
		{ID: "lead-1", Sender: "alice@example.com", Subject: "Pricing question"},
		{ID: "lead-2", Sender: "alice@example.com", Subject: "Pricing question"},
	}
	msg := &core.InboundMessage{Sender: "alice@example.com", Subject: "Pricing question"}

	result, err := m.Match(context.Background(), msg, existing)
	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	assert.Equal(t, "lead-1", result.LeadID)
}

func TestMatcher_CancelledContext(t *testing.T) {
	m := NewMatcher(80, 70)
	existing := []core.Lead{
		{ID: "lead-1", Sender: "alice@example.com", Subject: "Pricing question"},
	}
	msg := &core.InboundMessage{Sender: "alice@example.com", Subject: "Pricing question"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Match(ctx, msg, existing)
	assert.ErrorIs(t, err, context.Canceled)
}
