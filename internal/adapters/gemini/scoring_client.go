package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/tjsasakifln/Inbound/internal/core"
)

// ScoringClient is an implementation of the ScoringClient port using Google Gemini
type ScoringClient struct {
	client       *genai.Client
	model        *genai.GenerativeModel
	modelName    string
	maxBodySize  int
	logger       *zap.Logger
	promptFormat string
}

// scoringResponse represents the structured response from the model
type scoringResponse struct {
	Score float64 `json:"score"`
	Stage string  `json:"stage"`
}

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

// NewScoringClient creates a new Gemini scoring client
func NewScoringClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	maxBodySize int,
	logger *zap.Logger,
) (*ScoringClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &ScoringClient{
		client:       client,
		model:        model,
		modelName:    modelName,
		maxBodySize:  maxBodySize,
		logger:       logger,
		promptFormat: promptFormat,
	}, nil
}

// Close closes the Gemini client
func (c *ScoringClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
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

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	var parsed scoringResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
		jsonStart := -1
		jsonEnd := -1
		for i := 0; i < len(responseText); i++ {
			if responseText[i] == '{' {
				jsonStart = i
				break
			}
		}
		for i := len(responseText) - 1; i >= 0; i-- {
			if responseText[i] == '}' {
				jsonEnd = i + 1
				break
			}
		}
		if jsonStart < 0 || jsonEnd <= jsonStart {
			return nil, fmt.Errorf("failed to extract JSON from model response: %w", err)
		}
		if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd]), &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
		}
	}

	return &core.RawScore{
		Score:    parsed.Score,
		Stage:    core.Stage(parsed.Stage),
		Prompt:   prompt,
		Response: responseText,
		Model:    c.modelName,
	}, nil
}
