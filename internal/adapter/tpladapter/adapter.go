package tpladapter

import (
	"bytes"
	"cmp"
	"fmt"
	"html/template"
	"slices"

	_ "embed"

	"github.com/jgivc/pageindex/internal/entity"
	"github.com/jgivc/pageindex/internal/util"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	mhtml "github.com/tdewolff/minify/v2/html"
)

const (
	mimeTypeHTML = "text/html"
	mimeTypeCSS  = "text/css"
)

//go:embed template.html
var defaultTemplate string

var markers = [...]string{"🚀", "🐉", "🐎", "✨", "🏰", "🦄", "☄️", "🔥"}

type PageContext struct {
	Version string
	Count   int
	Items   []Item
}

type Item struct {
	Marker string
	*entity.Page
}

type tplAdapter struct {
	tpl *template.Template
	min *minify.M
}

type Option func(*tplAdapter)

// WithMinify strips whitespace from the rendered document.
func WithMinify() Option {
	return func(a *tplAdapter) {
		m := minify.New()
		m.AddFunc(mimeTypeCSS, css.Minify)
		m.AddFunc(mimeTypeHTML, mhtml.Minify)
		a.min = m
	}
}

func NewTplAdapter(opts ...Option) (*tplAdapter, error) {
	tpl, err := template.New("index").Parse(defaultTemplate)
	if err != nil {
		return nil, fmt.Errorf("cannot parse template: %w", err)
	}

	a := &tplAdapter{tpl: tpl}
	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Marker returns the decorative symbol for position i of the sorted list.
func Marker(i int) string {
	return markers[i%len(markers)]
}

// SortPages orders pages by folder, then by title.
func SortPages(pages []*entity.Page) {
	slices.SortStableFunc(pages, func(a, b *entity.Page) int {
		if c := cmp.Compare(a.Folder, b.Folder); c != 0 {
			return c
		}

		return cmp.Compare(a.Title, b.Title)
	})
}

// Render builds the index document. pages must already be sorted.
func (a *tplAdapter) Render(pages []*entity.Page, version entity.Version) (string, error) {
	pc := &PageContext{
		Version: version.String(),
		Count:   len(pages),
		Items:   make([]Item, 0, len(pages)),
	}

	for i, page := range pages {
		p := *page
		p.Path = util.WebPath(p.Path)
		pc.Items = append(pc.Items, Item{Marker: Marker(i), Page: &p})
	}

	buf := bytes.Buffer{}
	if err := a.tpl.Execute(&buf, pc); err != nil {
		return "", fmt.Errorf("cannot execute template: %w", err)
	}

	if a.min == nil {
		return buf.String(), nil
	}

	content, err := a.min.String(mimeTypeHTML, buf.String())
	if err != nil {
		return "", fmt.Errorf("cannot minify document: %w", err)
	}

	return content, nil
}
