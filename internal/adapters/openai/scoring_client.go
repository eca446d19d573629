package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/tjsasakifln/Inbound/internal/core"
)

// ScoringClient is an implementation of the ScoringClient port using OpenAI
type ScoringClient struct {
	client       *openai.Client
	modelName    string
	maxTokens    int
	temperature  float32
	maxBodySize  int
	logger       *zap.Logger
	promptFormat string
}

// scoringResponse represents the structured response from the model
type scoringResponse struct {
	Score float64 `json:"score"`
	Stage string  `json:"stage"`
}

const systemPrompt = "You are an SDR assistant that qualifies inbound sales leads. Respond only with JSON."

const promptFormat = `You are an SDR assistant. Read the following inbound message and rate how promising
the lead is. Use these reference points:
- Hot lead (clear buying intent, budget or timeline mentioned): score around 0.9
- Warm lead (genuine interest, questions about product or pricing): score around 0.6
- Cold lead (vague, unrelated or automated message): score around 0.2

Respond with a JSON object containing:
- score: number between 0 and 1
- stage: one of "NEW", "QUALIFIED", "WON"

Message:
Subject: %s
Body:
%s

Respond only with the JSON object and nothing else.`

// NewScoringClient creates a new OpenAI scoring client
func NewScoringClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	maxBodySize int,
	logger *zap.Logger,
) *ScoringClient {
	return &ScoringClient{
		client:       openai.NewClient(apiKey),
		modelName:    modelName,
		maxTokens:    maxTokens,
		temperature:  temperature,
		maxBodySize:  maxBodySize,
		logger:       logger,
		promptFormat: promptFormat,
	}
}

// Model returns the identifier of the backing model
func (c *ScoringClient) Model() string {
	return c.modelName
}

// truncateBody truncates the message body if it exceeds the maximum size
func (c *ScoringClient) truncateBody(body string) string {
	if c.maxBodySize <= 0 || len(body) <= c.maxBodySize {
		return body
	}

	truncated := body[:c.maxBodySize]
	c.logger.Debug("message body truncated",
		zap.Int("original_size", len(body)),
		zap.Int("max_size", c.maxBodySize))

	return truncated + "\n[... Content truncated due to size limits ...]"
}

// ScoreMessage classifies a message into a score and stage
func (c *ScoringClient) ScoreMessage(ctx context.Context, subject, body string) (*core.RawScore, error) {
	prompt := fmt.Sprintf(c.promptFormat, subject, c.truncateBody(body))

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	responseText := resp.Choices[0].Message.Content
	parsed, err := parseScoringResponse(responseText)
	if err != nil {
		return nil, err
	}

	return &core.RawScore{
		Score:    parsed.Score,
		Stage:    core.Stage(parsed.Stage),
		Prompt:   prompt,
		Response: responseText,
		Model:    c.modelName,
	}, nil
}

// parseScoringResponse decodes the model output, salvaging the JSON
// object from surrounding prose if direct decoding fails.
func parseScoringResponse(text string) (*scoringResponse, error) {
	var parsed scoringResponse
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		jsonStart := -1
		jsonEnd := -1
		for i := 0; i < len(text); i++ {
			if text[i] == '{' {
				jsonStart = i
				break
			}
		}
		for i := len(text) - 1; i >= 0; i-- {
			if text[i] == '}' {
				jsonEnd = i + 1
				break
			}
		}
		if jsonStart < 0 || jsonEnd <= jsonStart {
			return nil, fmt.Errorf("failed to extract JSON from model response: %w", err)
		}
		if err := json.Unmarshal([]byte(text[jsonStart:jsonEnd]), &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
		}
	}
	return &parsed, nil
}
