package completion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"reply-relay/internal/config"
	"reply-relay/internal/utils/text"
)

// OpenAI implements Completer using the OpenAI chat completions API.
type OpenAI struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	metrics   MetricsRecorder
}

// NewOpenAI creates an OpenAI client. A non-empty cfg.BaseURL replaces the
// default endpoint, e.g. "http://localhost:8080/v1".
func NewOpenAI(cfg config.CompletionConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}

	slog.Info("Initialized OpenAI completion client",
		slog.String("model", model),
		slog.Duration("timeout", cfg.Timeout))

	return &OpenAI{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		metrics:   NewPrometheusMetrics(),
	}
}

// Complete sends a two-turn chat request and returns the first choice's content.
func (o *OpenAI) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	slog.DebugContext(ctx, "Starting completion",
		slog.String("provider", config.ProviderOpenAI),
		slog.Int("input_length", text.CountRunes(userText)))

	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		MaxTokens: o.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
	})

	duration := time.Since(start)

	if err != nil {
		o.metrics.RecordCompletion(config.ProviderOpenAI, OutcomeError, duration)
		slog.ErrorContext(ctx, "Completion failed",
			slog.String("provider", config.ProviderOpenAI),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		o.metrics.RecordCompletion(config.ProviderOpenAI, OutcomeEmpty, duration)
		slog.ErrorContext(ctx, "OpenAI API returned empty response",
			slog.Duration("duration", duration))
		return "", ErrEmptyCompletion
	}

	content := resp.Choices[0].Message.Content
	o.metrics.RecordCompletion(config.ProviderOpenAI, OutcomeSuccess, duration)

	slog.InfoContext(ctx, "Completion finished",
		slog.String("provider", config.ProviderOpenAI),
		slog.String("model", o.model),
		slog.Int("output_length", text.CountRunes(content)),
		slog.Duration("duration", duration))

	return content, nil
}
