// Package parser extracts links and headings from Markdown content.
package parser

import (
	"regexp"
	"strings"

	"github.com/starford/doclink/internal/models"
)

var (
	markdownLinkRe = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)\)`)
	bareURLRe      = regexp.MustCompile(`https?://[^\s<>"']+`)
)

// ExtractLinks returns every link in content in source order with 1-based
// line numbers. Formatted [text](target) links are matched first; bare URLs
// are then matched against the line with formatted spans masked out, so a
// URL inside a formatted link is never reported twice. Images
// (![alt](target)) share the formatted-link grammar and are extracted the
// same way. No target is resolved here — classification only.
func ExtractLinks(content []byte) []models.Link {
	var out []models.Link
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		lineNo := i + 1
		seen := make(map[string]struct{})

		masked := []byte(line)
		for _, m := range markdownLinkRe.FindAllStringSubmatchIndex(line, -1) {
			span := line[m[0]:m[1]]
			text := line[m[2]:m[3]]
			target := line[m[4]:m[5]]
			out = append(out, models.Link{
				Text:   text,
				Target: target,
				Line:   lineNo,
				Kind:   Classify(target),
				Span:   span,
			})
			seen[target] = struct{}{}
			for j := m[0]; j < m[1]; j++ {
				masked[j] = ' '
			}
		}

		for _, m := range bareURLRe.FindAllStringIndex(string(masked), -1) {
			target := string(masked[m[0]:m[1]])
			if _, dup := seen[target]; dup {
				continue
			}
			seen[target] = struct{}{}
			out = append(out, models.Link{
				Text:   target,
				Target: target,
				Line:   lineNo,
				Kind:   models.KindExternal,
				Span:   target,
			})
		}
	}
	return out
}

// Classify determines a link kind from the target's leading characters.
// Malformed URLs that still carry a scheme prefix classify as external and
// fail later at validation with a parse-error reason.
func Classify(target string) models.LinkKind {
	switch {
	case strings.HasPrefix(target, "#"):
		return models.KindAnchor
	case strings.HasPrefix(target, "http://"), strings.HasPrefix(target, "https://"):
		return models.KindExternal
	default:
		return models.KindLocal
	}
}
