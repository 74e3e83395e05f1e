// Package resilience groups fault tolerance helpers for calls leaving the relay.
//
// The circuitbreaker subpackage wraps github.com/sony/gobreaker so that a
// failing completion service is short-circuited instead of holding every
// inbound request for the full completion timeout. There are no retries:
// every inbound request maps to at most one outbound call.
//
// Usage:
//
//	cb := circuitbreaker.New(circuitbreaker.CompletionAPIConfig("openai"))
//	raw, err := cb.Call(func() (string, error) {
//	    return client.Complete(ctx, systemPrompt, userText)
//	})
//	if errors.Is(err, circuitbreaker.ErrOpen) {
//	    // rejected without a remote call
//	}
package resilience
