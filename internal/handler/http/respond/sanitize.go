package respond

import (
	"regexp"
)

var (
	// anthropicKeyPattern must run before openaiKeyPattern: both share the "sk-" prefix.
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	openaiKeyPattern    = regexp.MustCompile(`sk-(?:proj-)?[a-zA-Z0-9_-]{10,}`)

	bearerPattern      = regexp.MustCompile(`(?i)(bearer\s+)[a-zA-Z0-9._~+/=-]+`)
	urlPasswordPattern = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)
)

// SanitizeError returns the error message with API keys, bearer tokens
// and URL passwords masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error())
}

// SanitizeString masks credentials in an arbitrary message.
func SanitizeString(msg string) string {
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = bearerPattern.ReplaceAllString(msg, "${1}****")
	msg = urlPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
