package config

import "time"

// ScoringConfig represents the configuration for the scoring layer
type ScoringConfig struct {
	Provider string
	Timeout  time.Duration
	FailOpen bool
	CacheTTL time.Duration
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	MaxBodySize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	MaxBodySize int
}

// DedupConfig represents the duplicate matching thresholds
type DedupConfig struct {
	SenderThreshold  float64
	SubjectThreshold float64
}

// RedisConfig represents the Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RetryConfig represents the retry policy for message processing
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
	Jitter         float64
}

// GetScoring returns the scoring layer configuration
func (c *Config) GetScoring() (ScoringConfig, error) {
	timeout, err := c.GetDuration("scoring.timeout")
	if err != nil {
		return ScoringConfig{}, err
	}
	ttl, err := c.GetDuration("scoring.cache_ttl")
	if err != nil {
		return ScoringConfig{}, err
	}
	return ScoringConfig{
		Provider: c.GetString("scoring.provider"),
		Timeout:  timeout,
		FailOpen: c.GetBool("scoring.fail_open"),
		CacheTTL: ttl,
	}, nil
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetDedup returns the duplicate matching configuration
func (c *Config) GetDedup() DedupConfig {
	return DedupConfig{
		SenderThreshold:  c.GetFloat64("dedup.sender_threshold"),
		SubjectThreshold: c.GetFloat64("dedup.subject_threshold"),
	}
}

// GetRedis returns the Redis connection configuration
func (c *Config) GetRedis() RedisConfig {
	return RedisConfig{
		Addr:     c.GetString("redis.addr"),
		Password: c.GetString("redis.password"),
		DB:       c.GetInt("redis.db"),
	}
}

// GetRetry returns the retry policy configuration
func (c *Config) GetRetry() (RetryConfig, error) {
	initial, err := c.GetDuration("retry.initial_backoff")
	if err != nil {
		return RetryConfig{}, err
	}
	max, err := c.GetDuration("retry.max_backoff")
	if err != nil {
		return RetryConfig{}, err
	}
	return RetryConfig{
		MaxAttempts:    c.GetInt("retry.max_attempts"),
		InitialBackoff: initial,
		MaxBackoff:     max,
		Multiplier:     c.GetFloat64("retry.multiplier"),
		Jitter:         c.GetFloat64("retry.jitter"),
	}, nil
}
