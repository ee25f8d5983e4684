// Package lessons holds the textbook's lesson catalog, renders lesson prose from
// markdown, and tracks a reader's progress through a lesson's stages.
package lessons

import (
	"embed"
	"html/template"
	"path"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"statbook/internal/errors"
)

//go:embed content/*.md
var content embed.FS

// Lesson describes one textbook page
type Lesson struct {
	Slug   string  `json:"slug"`
	Title  string  `json:"title"`
	Chart  string  `json:"chart"` // Chart endpoint the page embeds
	Stages []Stage `json:"stages"`
	file   string
}

var catalog = []Lesson{
	{Slug: "descriptive", Title: "Describing a Sample", Chart: "normal", file: "descriptive.md"},
	{Slug: "confidence-intervals", Title: "Confidence Intervals for a Mean", Chart: "interval", file: "confidence-intervals.md"},
	{Slug: "proportions", Title: "Estimating a Proportion", Chart: "interval", file: "proportions.md"},
	{Slug: "sample-size", Title: "How Many Observations Do We Need?", Chart: "sample-size", file: "sample-size.md"},
	{Slug: "t-tests", Title: "Testing a Claim About a Mean", Chart: "t", file: "t-tests.md"},
	{Slug: "regression", Title: "Simple Linear Regression", Chart: "regression", file: "regression.md"},
	{Slug: "coverage", Title: "What \"95% Confidence\" Means", Chart: "interval", file: "coverage.md"},
}

// All returns the lessons in reading order
func All() []Lesson {
	out := make([]Lesson, len(catalog))
	for i, l := range catalog {
		l.Stages = Stages()
		out[i] = l
	}
	return out
}

// Find looks a lesson up by slug
func Find(slug string) (Lesson, error) {
	for _, l := range catalog {
		if l.Slug == slug {
			l.Stages = Stages()
			return l, nil
		}
	}
	return Lesson{}, errors.NotFound("lesson " + slug)
}

// Markdown returns the raw prose of a lesson
func (l Lesson) Markdown() ([]byte, error) {
	raw, err := content.ReadFile(path.Join("content", l.file))
	if err != nil {
		return nil, errors.Wrapf(err, "read lesson %s", l.Slug)
	}
	return raw, nil
}

// HTML renders the lesson prose. Math spans ($...$, $$...$$) are passed
// through for client-side typesetting.
func (l Lesson) HTML() (template.HTML, error) {
	raw, err := l.Markdown()
	if err != nil {
		return "", err
	}

	// Parsers carry state and cannot be reused across documents.
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.MathJax)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})

	return template.HTML(markdown.ToHTML(raw, p, renderer)), nil
}
