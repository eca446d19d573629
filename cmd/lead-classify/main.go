package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/tjsasakifln/Inbound/internal/adapters/audit"
	"github.com/tjsasakifln/Inbound/internal/adapters/publish"
	"github.com/tjsasakifln/Inbound/internal/adapters/store"
	"github.com/tjsasakifln/Inbound/internal/config"
	"github.com/tjsasakifln/Inbound/internal/core"
	"github.com/tjsasakifln/Inbound/internal/dedup"
	"github.com/tjsasakifln/Inbound/internal/enrich"
	"github.com/tjsasakifln/Inbound/internal/factory"
	"github.com/tjsasakifln/Inbound/internal/logging"
	"github.com/tjsasakifln/Inbound/internal/resilience"
)

var (
	// Scoring provider flags
	provider    = flag.String("provider", "openai", "Scoring provider (openai, gemini, bedrock)")
	maxTokens   = flag.Int("max-tokens", 256, "Maximum tokens for model response")
	temperature = flag.Float64("temperature", 0.0, "Temperature for model generation")
	maxBodySize = flag.Int("max-body-size", 4096, "Maximum message body size to send to the model")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4o-mini", "OpenAI model name")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-3-haiku-20240307-v1:0", "Bedrock model ID")

	// Message flags
	emailID = flag.String("email-id", "", "Unique email ID of the message")
	sender  = flag.String("sender", "", "Sender address of the message")
	subject = flag.String("subject", "", "Subject of the message")
	file    = flag.String("file", "", "File with the message body (use stdin if not specified)")

	// Output flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	body, err := readBody(*file)
	if err != nil {
		logger.Fatal("Failed to read message body", zap.Error(err))
	}

	scoringClient, err := factory.NewScoringFactory(cfg, logger).CreateScoringClient()
	if err != nil {
		logger.Fatal("Failed to create scoring client", zap.Error(err))
	}

	scoringCfg, err := cfg.GetScoring()
	if err != nil {
		logger.Fatal("Invalid scoring configuration", zap.Error(err))
	}

	auditSink := audit.NewMemorySink()
	classifier := core.NewClassifier(
		scoringClient,
		nil,   // No cache for one-shot runs
		auditSink,
		logger,
		false, // Cache disabled
		time.Duration(0),
		scoringCfg.Timeout,
	)

	dedupCfg := cfg.GetDedup()
	leadStore := store.NewMemoryStore()
	pipeline := core.NewPipeline(
		dedup.NewMatcher(dedupCfg.SenderThreshold, dedupCfg.SubjectThreshold),
		classifier,
		enrich.NewAnalyzer(logger),
		leadStore,
		publish.NewLogPublisher(logger),
		publish.NewLogDeadLetter(logger),
		logger,
		resilience.Config{MaxAttempts: 1},
		scoringCfg.FailOpen,
	)

	msg := &core.InboundMessage{
		EmailID: *emailID,
		Sender:  *sender,
		Subject: *subject,
		Body:    body,
		Source:  core.SourceEmail,
	}

	result, err := pipeline.ProcessMessage(context.Background(), msg)
	if err != nil {
		logger.Fatal("Failed to process message", zap.Error(err))
	}

	lead, err := leadStore.GetByEmailID(context.Background(), msg.EmailID)
	if err != nil {
		logger.Fatal("Failed to load processed lead", zap.Error(err))
	}

	fmt.Printf("Outcome: %s\n", result.Status)
	fmt.Printf("Lead: %s\n", lead.ID)
	fmt.Printf("Score: %.2f\n", lead.Score)
	fmt.Printf("Stage: %s\n", lead.Stage)
	fmt.Printf("Intent: %s\n", lead.Intent)
	if len(lead.Entities) > 0 {
		fmt.Println("Terms:")
		for term, tag := range lead.Entities {
			fmt.Printf("  %s (%s)\n", term, tag)
		}
	}

	if closer, ok := scoringClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close scoring client", zap.Error(err))
		}
	}
}

// readBody reads the message body from a file, or stdin when no file is given
func readBody(path string) (string, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("scoring.provider", *provider)

	switch *provider {
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.max_body_size", *maxBodySize)
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.max_body_size", *maxBodySize)
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.max_body_size", *maxBodySize)
	}

	return config.NewFromViper(v)
}
