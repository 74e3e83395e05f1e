package normalizer

import (
	"strings"

	"github.com/k3a/html2text"
)

// flatMarkup re-encodes plain text as markup html2text renders back verbatim:
// entities for the three markup characters and <br> for every line break.
var flatMarkup = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\n", "<br>")

// HTML2Text renders text with github.com/k3a/html2text.
//
// html2text does not separate adjacent inline elements and turns <p> into a
// blank line, so the element boundaries are resolved by the Goquery pass
// first. The flattened result is then rendered by html2text, which also
// collapses runs of spaces and tabs into one space.
type HTML2Text struct {
	structure *Goquery
}

// NewHTML2Text creates an HTML2Text normalizer with the default block tags.
func NewHTML2Text() *HTML2Text {
	return &HTML2Text{structure: NewGoquery()}
}

// Normalize implements Normalizer.
func (h *HTML2Text) Normalize(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	text := h.structure.Normalize(fragment)
	return strings.TrimSpace(html2text.HTML2TextWithOptions(flatMarkup.Replace(text), html2text.WithUnixLineBreaks()))
}
