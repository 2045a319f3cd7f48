// Package resolve validates local-file and anchor links against the file system.
package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/doclink/internal/models"
	"github.com/starford/doclink/internal/parser"
)

// maxAnchorHints caps the anchors listed in an anchor-not-found diagnostic.
const maxAnchorHints = 5

// Resolver checks link targets against the corpus on disk.
type Resolver struct {
	root string // absolute corpus root
}

// New creates a Resolver for the given corpus root.
func New(root string) *Resolver {
	return &Resolver{root: root}
}

// Resolve validates target relative to the document at docPath (corpus-
// relative, slash-separated). Targets starting with "/" resolve against the
// corpus root; everything else resolves against the document's directory.
// A target with a "#fragment" additionally requires a heading in the target
// document whose slug equals the fragment. Anchor-only targets ("#x") check
// the containing document itself.
func (r *Resolver) Resolve(target, docPath string) models.ValidationResult {
	pathPart, fragment, hasFragment := strings.Cut(target, "#")

	abs, inside := r.absTarget(pathPart, docPath)
	if !inside {
		return models.ValidationResult{
			Valid:  false,
			Reason: models.ReasonFileNotFound,
		}
	}
	if _, err := os.Stat(abs); err != nil {
		return models.ValidationResult{
			Valid:  false,
			Reason: models.ReasonFileNotFound,
		}
	}
	if !hasFragment || fragment == "" {
		return models.ValidationResult{Valid: true}
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return models.ValidationResult{
			Valid:  false,
			Reason: fmt.Sprintf("%s: cannot read target: %v", models.ReasonAnchorNotFound, err),
		}
	}
	headings := parser.Headings(data)
	var available []string
	for _, h := range headings {
		if h.Slug == fragment {
			return models.ValidationResult{Valid: true}
		}
		if len(available) < maxAnchorHints {
			available = append(available, "#"+h.Slug)
		}
	}
	res := models.ValidationResult{
		Valid:  false,
		Reason: models.ReasonAnchorNotFound,
	}
	if len(available) > 0 {
		res.Suggestion = "available anchors: " + strings.Join(available, ", ")
	}
	return res
}

// Exists reports whether target (without fragment) resolves to an existing
// path relative to docPath. The suggestion engine uses this for re-checks.
func (r *Resolver) Exists(target, docPath string) bool {
	pathPart, _, _ := strings.Cut(target, "#")
	abs, inside := r.absTarget(pathPart, docPath)
	if !inside {
		return false
	}
	_, err := os.Stat(abs)
	return err == nil
}

// absTarget maps a link path to an absolute file-system path. An empty path
// part (anchor-only link) degenerates to the containing document. Targets
// whose cleaned path climbs above the corpus root are rejected: storage
// refuses to read or patch such files, so validation must not bless them.
func (r *Resolver) absTarget(pathPart, docPath string) (string, bool) {
	var abs string
	switch {
	case pathPart == "":
		abs = filepath.Join(r.root, filepath.FromSlash(docPath))
	case strings.HasPrefix(pathPart, "/"):
		abs = filepath.Join(r.root, filepath.FromSlash(pathPart))
	default:
		docDir := filepath.Dir(filepath.Join(r.root, filepath.FromSlash(docPath)))
		abs = filepath.Join(docDir, filepath.FromSlash(pathPart))
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return abs, true
}
