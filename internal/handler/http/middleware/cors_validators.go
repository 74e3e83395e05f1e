package middleware

import (
	"strings"
)

// OriginValidator decides whether a browser Origin may call the API.
type OriginValidator interface {
	// IsAllowed reports whether origin is permitted. Empty origins are never allowed.
	IsAllowed(origin string) bool

	// GetAllowedOrigins returns the configured origins in normalized form.
	GetAllowedOrigins() []string
}

// WhitelistValidator performs exact-match origin validation.
// Comparison ignores case and a trailing slash.
type WhitelistValidator struct {
	allowed map[string]struct{}
	ordered []string
}

// NewWhitelistValidator creates a validator for the given origins.
// Blank entries are skipped and duplicates collapse.
func NewWhitelistValidator(origins []string) *WhitelistValidator {
	v := &WhitelistValidator{allowed: make(map[string]struct{}, len(origins))}
	for _, origin := range origins {
		origin = normalizeOrigin(origin)
		if origin == "" {
			continue
		}
		if _, dup := v.allowed[origin]; dup {
			continue
		}
		v.allowed[origin] = struct{}{}
		v.ordered = append(v.ordered, origin)
	}
	return v
}

// IsAllowed implements OriginValidator.
func (v *WhitelistValidator) IsAllowed(origin string) bool {
	origin = normalizeOrigin(origin)
	if origin == "" {
		return false
	}
	_, ok := v.allowed[origin]
	return ok
}

// GetAllowedOrigins implements OriginValidator. The returned slice is a copy.
func (v *WhitelistValidator) GetAllowedOrigins() []string {
	out := make([]string, len(v.ordered))
	copy(out, v.ordered)
	return out
}

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(origin)), "/")
}
