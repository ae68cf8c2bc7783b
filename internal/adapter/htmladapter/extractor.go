package htmladapter

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jgivc/pageindex/internal/common"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	classDescription = "description"
)

// Info is what the index shows for a single page.
type Info struct {
	Title       string
	Description string
}

// Extract reads the title and description from an HTML document.
// On failure the returned Info still holds the fallback values:
// fallbackTitle and an empty description.
func Extract(content []byte, fallbackTitle string) (Info, error) {
	info := Info{Title: fallbackTitle}

	if !utf8.Valid(content) {
		return info, common.ErrInvalidEncoding
	}

	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return info, fmt.Errorf("cannot parse html: %w", err)
	}

	if title := extractTitle(doc); title != "" {
		info.Title = title
	}

	info.Description = extractDescription(doc)

	return info, nil
}

func extractTitle(doc *html.Node) string {
	for _, a := range []atom.Atom{atom.H1, atom.Title} {
		if n := findFirst(doc, isElement(a)); n != nil {
			if text := nodeText(n); text != "" {
				return text
			}
		}
	}

	return ""
}

func extractDescription(doc *html.Node) string {
	n := findFirst(doc, hasClass(classDescription))
	if n == nil {
		n = findFirst(doc, isElement(atom.P))
	}

	if n == nil {
		return ""
	}

	return Truncate(nodeText(n))
}

func isElement(a atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a
	}
}

func hasClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}

		for _, attr := range n.Attr {
			if attr.Namespace == "" && attr.Key == "class" {
				for _, c := range strings.Fields(attr.Val) {
					if c == class {
						return true
					}
				}
			}
		}

		return false
	}
}

// findFirst returns the first node in document order matching fn.
func findFirst(n *html.Node, fn func(*html.Node) bool) *html.Node {
	if fn(n) {
		return n
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, fn); found != nil {
			return found
		}
	}

	return nil
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	collectText(n, &sb)

	return strings.TrimSpace(sb.String())
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)

		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}
