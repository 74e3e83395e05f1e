// Package normalizer converts HTML fragments into plain text for the completion prompt.
// Two implementations are provided: Goquery (default) and HTML2Text.
package normalizer

import (
	"fmt"
	"strings"
)

// Normalizer turns markup into readable plain text. Implementations never fail;
// malformed markup is parsed leniently and empty input yields an empty string.
type Normalizer interface {
	Normalize(html string) string
}

const (
	// KindGoquery selects the goquery based normalizer.
	KindGoquery = "goquery"
	// KindHTML2Text selects the html2text based normalizer.
	KindHTML2Text = "html2text"
)

// New returns the normalizer registered under kind.
func New(kind string) (Normalizer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindGoquery:
		return NewGoquery(), nil
	case KindHTML2Text:
		return NewHTML2Text(), nil
	default:
		return nil, fmt.Errorf("unknown normalizer %q: must be one of %s, %s", kind, KindGoquery, KindHTML2Text)
	}
}
