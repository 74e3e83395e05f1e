// Package entity holds the value types that flow through a single relay request.
package entity

import "strings"

// MissingKeyPlaceholder is returned in place of a message when the model's
// JSON answer has no "message" key.
const MissingKeyPlaceholder = "Response key not found in the output."

// ErrorMarker prefixes every orchestration failure rendered for a client.
const ErrorMarker = "Error communicating with OpenAI API: "

// HTMLFragment is the raw markup posted by the browser extension.
type HTMLFragment string

// Validate reports ErrEmptyHTML for a fragment that is empty or only whitespace.
func (f HTMLFragment) Validate() error {
	if strings.TrimSpace(string(f)) == "" {
		return ErrEmptyHTML
	}
	return nil
}

// Reply is the outcome of a successful orchestration.
// KeyFound is false when the model answered with JSON lacking the
// "message" key; Message then holds MissingKeyPlaceholder.
type Reply struct {
	Message  string
	KeyFound bool
}

// NewReply returns a Reply for an extracted message.
func NewReply(message string) Reply {
	return Reply{Message: message, KeyFound: true}
}

// MissingKeyReply returns the degraded Reply used when the key is absent.
func MissingKeyReply() Reply {
	return Reply{Message: MissingKeyPlaceholder}
}

// Render collapses a result-or-error into the single string the HTTP
// surface returns. Errors become ErrorMarker followed by the error text.
func Render(r Reply, err error) string {
	if err != nil {
		return ErrorMarker + err.Error()
	}
	return r.Message
}
