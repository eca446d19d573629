package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/tjsasakifln/Inbound/internal/core"
)

// ScoringClient is an implementation of the ScoringClient port using Amazon Bedrock
type ScoringClient struct {
	client       *bedrockruntime.Client
	modelID      string
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

// NewScoringClient creates a new Bedrock scoring client
func NewScoringClient(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	maxBodySize int,
	logger *zap.Logger,
) *ScoringClient {
	return &ScoringClient{
		client:       client,
		modelID:      modelID,
		maxTokens:    maxTokens,
		temperature:  temperature,
		maxBodySize:  maxBodySize,
		logger:       logger,
		promptFormat: promptFormat,
	}
}

// Model returns the identifier of the backing model
func (c *ScoringClient) Model() string {
	return c.modelID
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

	payload, err := json.Marshal(map[string]interface{}{
		"anthropic_version": "bedrock-2023-05-31",
		"max_tokens":        c.maxTokens,
		"temperature":       c.temperature,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": prompt,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	var modelResp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(resp.Body, &modelResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Bedrock response: %w", err)
	}
	if len(modelResp.Content) == 0 {
		return nil, fmt.Errorf("empty response from Bedrock model")
	}
	responseText := modelResp.Content[0].Text

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
		Model:    c.modelID,
	}, nil
}
