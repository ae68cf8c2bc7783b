package mdadapter

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/frontmatter"
)

const (
	fenceLanguageHTML = "html"
)

var (
	fenceOpen = []byte("```" + fenceLanguageHTML)

	// Fallback for fences goldmark does not see, e.g. not starting a line.
	fencedHTMLRegexp = regexp.MustCompile("(?s)```html\\s*(.*?)```")
)

// Normalizer unwraps HTML that was authored inside a markdown ```html fence.
type Normalizer struct {
	md goldmark.Markdown
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		md: goldmark.New(
			goldmark.WithExtensions(
				&frontmatter.Extender{},
			),
		),
	}
}

// Normalize returns the inner content of the first closed ```html fence in src,
// or src itself when there is none. The fence ends at the next ``` whatever
// follows it.
func (n *Normalizer) Normalize(src []byte) []byte {
	if !bytes.Contains(src, fenceOpen) {
		return src
	}

	loc := fencedHTMLRegexp.FindSubmatchIndex(src)
	if loc == nil {
		return src
	}
	captured := src[loc[2]:loc[3]]

	block, err := n.firstFencedBlock(src)
	if err != nil || block == nil {
		return captured
	}

	// goldmark's block is only used when it is the same fence as the leftmost
	// match and does not run past a nested ``` line.
	if block.infoStart != loc[0]+len("```") || bytes.Contains(block.content, []byte("```")) {
		return captured
	}

	return block.content
}

type fencedBlock struct {
	content   []byte
	infoStart int
}

func (n *Normalizer) firstFencedBlock(src []byte) (*fencedBlock, error) {
	doc := n.md.Parser().Parse(text.NewReader(src))

	var found *fencedBlock

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		block, ok := node.(*ast.FencedCodeBlock)
		if !ok || block.Info == nil || string(block.Language(src)) != fenceLanguageHTML {
			return ast.WalkContinue, nil
		}

		var buf bytes.Buffer
		lines := block.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}

		found = &fencedBlock{
			content:   buf.Bytes(),
			infoStart: block.Info.Segment.Start,
		}

		return ast.WalkStop, nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot walk markdown: %w", err)
	}

	return found, nil
}
