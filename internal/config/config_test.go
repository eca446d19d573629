package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return NewFromViper(NewEmptyViper())
}

func TestDefaults_Scoring(t *testing.T) {
	cfg := defaultConfig()

	scoring, err := cfg.GetScoring()
	require.NoError(t, err)
	assert.Equal(t, "openai", scoring.Provider)
	assert.Equal(t, 20*time.Second, scoring.Timeout)
	assert.False(t, scoring.FailOpen)
	assert.Equal(t, time.Hour, scoring.CacheTTL)
}

func TestDefaults_Dedup(t *testing.T) {
	cfg := defaultConfig()

	dedup := cfg.GetDedup()
	assert.Equal(t, 80.0, dedup.SenderThreshold)
	assert.Equal(t, 70.0, dedup.SubjectThreshold)
}

func TestDefaults_Retry(t *testing.T) {
	cfg := defaultConfig()

	retry, err := cfg.GetRetry()
	require.NoError(t, err)
	assert.Equal(t, 3, retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, retry.InitialBackoff)
	assert.Equal(t, 30*time.Second, retry.MaxBackoff)
	assert.Equal(t, 2.0, retry.Multiplier)
	assert.Equal(t, 0.25, retry.Jitter)
}

func TestDefaults_Queue(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, "lead_updates", cfg.GetString("publish.channel"))
	assert.Equal(t, "leads:raw", cfg.GetString("queue.stream"))
	assert.Equal(t, "inbound-workers", cfg.GetString("queue.group"))
	assert.Equal(t, "lead_dead_letters", cfg.GetString("dlq.list"))
}

func TestDefaults_Providers(t *testing.T) {
	cfg := defaultConfig()

	openai := cfg.GetOpenAI()
	assert.Equal(t, "gpt-4o-mini", openai.ModelName)
	assert.Equal(t, 256, openai.MaxTokens)
	assert.Equal(t, 4096, openai.MaxBodySize)

	bedrock := cfg.GetBedrock()
	assert.Equal(t, "us-east-1", bedrock.Region)

	redis := cfg.GetRedis()
	assert.Equal(t, "localhost:6379", redis.Addr)
	assert.Equal(t, 0, redis.DB)
}

func TestOverride_TakesPrecedence(t *testing.T) {
	v := NewEmptyViper()
	v.Set("scoring.provider", "gemini")
	v.Set("dedup.sender_threshold", 92.5)
	cfg := NewFromViper(v)

	scoring, err := cfg.GetScoring()
	require.NoError(t, err)
	assert.Equal(t, "gemini", scoring.Provider)
	assert.Equal(t, 92.5, cfg.GetDedup().SenderThreshold)
}

func TestGetDuration_Invalid(t *testing.T) {
	v := NewEmptyViper()
	v.Set("scoring.timeout", "not-a-duration")
	cfg := NewFromViper(v)

	_, err := cfg.GetScoring()
	assert.Error(t, err)
}
