package entity

import "errors"

// Sentinel errors for domain layer operations.
var (
	// ErrEmptyHTML indicates that a request carried no HTML to process
	ErrEmptyHTML = errors.New("HTML content is required")

	// ErrMalformedReply indicates that the completion text was not a JSON object
	ErrMalformedReply = errors.New("malformed reply")
)
