package reply

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"

	"reply-relay/internal/domain/entity"
	"reply-relay/internal/utils/text"
)

// messageKey is the JSON key the system prompt asks the model to use.
const messageKey = "message"

// maxQuotedRaw bounds how much of an unparseable completion is quoted in errors.
const maxQuotedRaw = 200

// StripCodeFence removes a surrounding markdown code fence such as
// "```json ... ```" from a completion. Text without a leading fence is only
// trimmed.
func StripCodeFence(raw string) string {
	body := strings.TrimSpace(raw)
	if !strings.HasPrefix(body, "```") {
		return body
	}

	body = strings.TrimPrefix(body, "```")
	// drop the info string ("json", "JSON", ...)
	body = strings.TrimLeftFunc(body, unicode.IsLetter)

	if idx := strings.LastIndex(body, "```"); idx != -1 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

// ParseReply extracts the "message" value from a completion.
//
// Returns:
//   - the message when the key is present; a repeated key yields its last
//     value and a null value yields ""
//   - entity.MissingKeyReply() with a nil error when the JSON object lacks the key
//   - an error wrapping entity.ErrMalformedReply when the text is not a JSON object
func ParseReply(raw string) (entity.Reply, error) {
	body := StripCodeFence(raw)

	if !gjson.Valid(body) {
		return entity.Reply{}, fmt.Errorf("%w: response is not valid JSON: %q", entity.ErrMalformedReply, text.Preview(body, maxQuotedRaw))
	}

	doc := gjson.Parse(body)
	if !doc.IsObject() {
		return entity.Reply{}, fmt.Errorf("%w: expected a JSON object, got %s", entity.ErrMalformedReply, doc.Type)
	}

	msg, ok := lastMember(doc, messageKey)
	if !ok {
		return entity.MissingKeyReply(), nil
	}
	return entity.NewReply(msg.String()), nil
}

// lastMember returns the last value stored under key in obj. gjson's Get
// returns the first one, while JSON decoders keep the last.
func lastMember(obj gjson.Result, key string) (gjson.Result, bool) {
	var (
		value gjson.Result
		found bool
	)
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			value, found = v, true
		}
		return true
	})
	return value, found
}
