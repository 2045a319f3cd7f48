package parser

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/starford/doclink/internal/models"
	"github.com/starford/doclink/internal/slug"
)

// Headings extracts every heading from Markdown source in document order,
// with its nesting level and derived anchor slug. Duplicate slugs are not
// normalised: the first occurrence is authoritative when validating anchors.
func Headings(src []byte) []models.Heading {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var out []models.Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		raw := string(h.Text(src))
		out = append(out, models.Heading{
			Text:  raw,
			Level: h.Level,
			Slug:  slug.Anchor(raw),
		})
		return ast.WalkSkipChildren, nil
	})
	return out
}
