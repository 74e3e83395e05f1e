package completion

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"reply-relay/internal/config"
)

const claudeMessageJSON = `{
	"id": "msg_1",
	"type": "message",
	"role": "assistant",
	"model": "claude-sonnet-4-5",
	"content": [{"type": "text", "text": "{\"message\": "}, {"type": "text", "text": "\"Well done!\"}"}],
	"stop_reason": "end_turn",
	"stop_sequence": null,
	"usage": {"input_tokens": 12, "output_tokens": 6}
}`

func newTestClaude(t *testing.T, handler http.HandlerFunc) (*Claude, *fakeMetrics) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClaude(config.CompletionConfig{
		Provider:  config.ProviderClaude,
		APIKey:    "sk-ant-test",
		BaseURL:   server.URL + "/",
		Timeout:   5 * time.Second,
		MaxTokens: 300,
	})
	metrics := &fakeMetrics{}
	client.metrics = metrics
	return client, metrics
}

func TestClaude_Complete(t *testing.T) {
	var body []byte
	var apiKey, path string

	client, metrics := newTestClaude(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		apiKey = r.Header.Get("X-Api-Key")
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, claudeMessageJSON)
	})

	got, err := client.Complete(context.Background(), "be brief", "Raj: We won the final!")
	require.NoError(t, err)
	assert.Equal(t, `{"message": "Well done!"}`, got)

	assert.Equal(t, "/v1/messages", path)
	assert.Equal(t, "sk-ant-test", apiKey)

	req := gjson.ParseBytes(body)
	assert.Equal(t, "claude-sonnet-4-5", req.Get("model").String())
	assert.Equal(t, int64(300), req.Get("max_tokens").Int())
	assert.Equal(t, "be brief", req.Get("system.0.text").String())
	assert.Equal(t, "user", req.Get("messages.0.role").String())
	assert.Equal(t, "text", req.Get("messages.0.content.0.type").String())
	assert.Equal(t, "Raj: We won the final!", req.Get("messages.0.content.0.text").String())
	assert.Equal(t, int64(1), req.Get("messages.#").Int())

	assert.Equal(t, []string{OutcomeSuccess}, metrics.outcomes())
}

func TestClaude_Complete_Errors(t *testing.T) {
	tests := []struct {
		name        string
		statusCode  int
		body        string
		wantErr     error
		wantOutcome string
	}{
		{
			name:        "overloaded",
			statusCode:  529,
			body:        `{"type": "error", "error": {"type": "overloaded_error", "message": "Overloaded"}}`,
			wantOutcome: OutcomeError,
		},
		{
			name:        "unauthorized",
			statusCode:  http.StatusUnauthorized,
			body:        `{"type": "error", "error": {"type": "authentication_error", "message": "invalid x-api-key"}}`,
			wantOutcome: OutcomeError,
		},
		{
			name:        "no text blocks",
			statusCode:  http.StatusOK,
			body:        `{"id": "msg_2", "type": "message", "role": "assistant", "model": "claude-sonnet-4-5", "content": [], "stop_reason": "end_turn", "stop_sequence": null, "usage": {"input_tokens": 1, "output_tokens": 0}}`,
			wantErr:     ErrEmptyCompletion,
			wantOutcome: OutcomeEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			client, metrics := newTestClaude(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.Complete(context.Background(), "sys", "user")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.Contains(t, err.Error(), "claude api error")
			}
			assert.Equal(t, 1, calls, "retries are disabled")
			assert.Equal(t, []string{tt.wantOutcome}, metrics.outcomes())
		})
	}
}

func TestNewClaude_DefaultModel(t *testing.T) {
	client := NewClaude(config.CompletionConfig{APIKey: "sk-ant-test", MaxTokens: 10})
	assert.Equal(t, "claude-sonnet-4-5", client.model)
	assert.Equal(t, int64(10), client.maxTokens)
}
