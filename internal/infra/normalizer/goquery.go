package normalizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// defaultBlockTags are the paragraph-like elements that get a newline
// inserted before them and appended as their last child.
var defaultBlockTags = []string{"p", "div", "li", "blockquote", "h1", "h2", "h3", "h4", "h5", "h6"}

// Goquery normalizes HTML using goquery on top of the golang.org/x/net/html parser.
//
// Rules:
//   - <br> is replaced with "\n"
//   - block tags get "\n" before the element and "\n" as its last child
//   - script, style, template and noscript contents are dropped
//   - text runs are joined with a single space unless either side already
//     has whitespace at the boundary
//   - the result is trimmed
type Goquery struct {
	blockSelector string
}

// NewGoquery creates a Goquery normalizer with the default block tags.
func NewGoquery() *Goquery {
	return NewGoqueryWithBlockTags(defaultBlockTags)
}

// NewGoqueryWithBlockTags creates a Goquery normalizer that treats tags as
// paragraph-like blocks.
func NewGoqueryWithBlockTags(tags []string) *Goquery {
	return &Goquery{blockSelector: strings.Join(tags, ", ")}
}

// Normalize implements Normalizer.
func (g *Goquery) Normalize(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		// html.Parse only fails on reader errors, which a strings.Reader never returns
		return strings.TrimSpace(fragment)
	}

	doc.Find("script, style, template, noscript").Remove()

	doc.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithNodes(newlineNode())
	})

	if g.blockSelector != "" {
		doc.Find(g.blockSelector).Each(func(_ int, s *goquery.Selection) {
			s.BeforeNodes(newlineNode())
			s.AppendNodes(newlineNode())
		})
	}

	var runs []string
	for _, n := range doc.Nodes {
		collectText(n, &runs)
	}

	return strings.TrimSpace(joinRuns(runs))
}

func newlineNode() *html.Node {
	return &html.Node{Type: html.TextNode, Data: "\n"}
}

// collectText appends every text node under n in document order.
func collectText(n *html.Node, runs *[]string) {
	if n.Type == html.TextNode {
		*runs = append(*runs, n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, runs)
	}
}

// joinRuns concatenates text runs, inserting one space between runs that
// touch without whitespace.
func joinRuns(runs []string) string {
	var b strings.Builder
	var prev string
	for _, run := range runs {
		if run == "" {
			continue
		}
		if prev != "" && !endsWithSpace(prev) && !startsWithSpace(run) {
			b.WriteByte(' ')
		}
		b.WriteString(run)
		prev = run
	}
	return b.String()
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}
