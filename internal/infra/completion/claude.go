package completion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"reply-relay/internal/config"
	"reply-relay/internal/utils/text"
)

// Claude implements Completer using Anthropic's Messages API.
type Claude struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	metrics   MetricsRecorder
}

// NewClaude creates a Claude client. The SDK's built-in retries are disabled.
func NewClaude(cfg config.CompletionConfig) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = config.DefaultModel(config.ProviderClaude)
	}

	slog.Info("Initialized Claude completion client",
		slog.String("model", model),
		slog.Duration("timeout", cfg.Timeout))

	return &Claude{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: int64(cfg.MaxTokens),
		timeout:   cfg.Timeout,
		metrics:   NewPrometheusMetrics(),
	}
}

// Complete sends the system instruction and user turn and concatenates the
// text blocks of the response.
func (c *Claude) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	slog.DebugContext(ctx, "Starting completion",
		slog.String("provider", config.ProviderClaude),
		slog.Int("input_length", text.CountRunes(userText)))

	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userText)),
		},
	})

	duration := time.Since(start)

	if err != nil {
		c.metrics.RecordCompletion(config.ProviderClaude, OutcomeError, duration)
		slog.ErrorContext(ctx, "Completion failed",
			slog.String("provider", config.ProviderClaude),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("claude api error: %w", err)
	}

	var b strings.Builder
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}

	if b.Len() == 0 {
		c.metrics.RecordCompletion(config.ProviderClaude, OutcomeEmpty, duration)
		slog.ErrorContext(ctx, "Claude API returned no text content",
			slog.Int("blocks", len(message.Content)),
			slog.Duration("duration", duration))
		return "", ErrEmptyCompletion
	}

	content := b.String()
	c.metrics.RecordCompletion(config.ProviderClaude, OutcomeSuccess, duration)

	slog.InfoContext(ctx, "Completion finished",
		slog.String("provider", config.ProviderClaude),
		slog.String("model", c.model),
		slog.String("stop_reason", string(message.StopReason)),
		slog.Int("output_length", text.CountRunes(content)),
		slog.Duration("duration", duration))

	return content, nil
}
