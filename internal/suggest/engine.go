// Package suggest proposes ranked repair candidates for broken links.
package suggest

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/doclink/internal/index"
	"github.com/starford/doclink/internal/models"
	"github.com/starford/doclink/internal/resolve"
)

// Rule names reported on candidates and in fix-mode output.
const (
	RuleRelocation       = "relocation"
	RuleRedundantPrefix  = "redundant-prefix"
	RuleMissingExtension = "missing-extension"
	RuleKnownReplacement = "known-replacement"
	RuleTrailingPunct    = "trailing-punctuation"
	RuleFuzzySimilarity  = "fuzzy-similarity"
)

// Config holds corpus layout knowledge the rules depend on.
type Config struct {
	// ActiveDir is the primary documentation directory ("docs").
	ActiveDir string
	// ArchiveDir is where retired documents move ("docs/archived").
	ArchiveDir string
	// Extensions lists known document extensions in priority order.
	Extensions []string
	// Replacements maps retired target strings to their replacements.
	Replacements map[string]string
}

// Engine evaluates the fix rules in a fixed order. Any number of rules may
// fire; all their candidates are kept, ordered high-confidence first.
type Engine struct {
	resolver *resolve.Resolver
	idx      index.CorpusIndex
	cfg      Config
}

// New creates an Engine over the given resolver and corpus index.
func New(resolver *resolve.Resolver, idx index.CorpusIndex, cfg Config) *Engine {
	return &Engine{resolver: resolver, idx: idx, cfg: cfg}
}

// Suggest proposes repairs for one invalid link found in the document at
// docPath. Anchor-not-found failures get no candidates: the resolver's
// diagnostic already lists the available anchors, and guessing an anchor
// would be worse than silence.
func (e *Engine) Suggest(link models.Link, res models.ValidationResult, docPath string) []models.FixCandidate {
	if res.Reason == models.ReasonAnchorNotFound {
		return nil
	}

	pathPart, fragment, hasFragment := strings.Cut(link.Target, "#")
	restore := func(p string) string {
		if hasFragment {
			return p + "#" + fragment
		}
		return p
	}

	var out []models.FixCandidate
	add := func(c models.FixCandidate) {
		for _, existing := range out {
			if existing.Replacement == c.Replacement {
				return
			}
		}
		out = append(out, c)
	}

	if link.Kind == models.KindLocal {
		// 1. Relocation: the same relative path exists under the archive dir.
		if e.cfg.ActiveDir != "" && e.cfg.ArchiveDir != "" {
			activePrefix := e.cfg.ActiveDir + "/"
			if strings.HasPrefix(pathPart, activePrefix) && !strings.HasPrefix(pathPart, e.cfg.ArchiveDir+"/") {
				moved := e.cfg.ArchiveDir + "/" + strings.TrimPrefix(pathPart, activePrefix)
				if e.resolver.Exists(moved, docPath) {
					add(models.FixCandidate{
						Rule:        RuleRelocation,
						Replacement: restore(moved),
						Description: fmt.Sprintf("document moved to %s", e.cfg.ArchiveDir),
						Confidence:  models.ConfidenceHigh,
					})
				}
			}
		}

		// 2. Redundant prefix: "./" can be dropped when the bare path exists.
		if strings.HasPrefix(pathPart, "./") {
			stripped := strings.TrimPrefix(pathPart, "./")
			if stripped != "" && e.resolver.Exists(stripped, docPath) {
				add(models.FixCandidate{
					Rule:        RuleRedundantPrefix,
					Replacement: restore(stripped),
					Description: "redundant ./ prefix",
					Confidence:  models.ConfidenceHigh,
				})
			}
		}

		// 3. Missing extension: appending a known document extension finds a file.
		if pathPart != "" && path.Ext(pathPart) == "" {
			for _, ext := range e.cfg.Extensions {
				if e.resolver.Exists(pathPart+ext, docPath) {
					add(models.FixCandidate{
						Rule:        RuleMissingExtension,
						Replacement: restore(pathPart + ext),
						Description: fmt.Sprintf("file exists with %s extension", ext),
						Confidence:  models.ConfidenceHigh,
					})
				}
				if stripped := strings.TrimPrefix(pathPart, "./"); stripped != pathPart && e.resolver.Exists(stripped+ext, docPath) {
					add(models.FixCandidate{
						Rule:        RuleMissingExtension,
						Replacement: restore(stripped + ext),
						Description: fmt.Sprintf("file exists with %s extension (without ./)", ext),
						Confidence:  models.ConfidenceHigh,
					})
				}
			}
		}
	}

	// 4. Known replacement table (exact target string).
	if repl, ok := e.cfg.Replacements[link.Target]; ok {
		add(models.FixCandidate{
			Rule:        RuleKnownReplacement,
			Replacement: repl,
			Description: "retired target with a known replacement",
			Confidence:  models.ConfidenceHigh,
		})
	}

	// 5. Trailing punctuation: unbalanced closing parens on a URL.
	if link.Kind == models.KindExternal {
		if trimmed := trimUnbalancedParens(link.Target); trimmed != link.Target {
			add(models.FixCandidate{
				Rule:        RuleTrailingPunct,
				Replacement: trimmed,
				Description: "unbalanced trailing parenthesis",
				Confidence:  models.ConfidenceHigh,
			})
		}
	}

	// 6. Fuzzy similarity: only when nothing better fired and the file is
	// simply missing.
	if len(out) == 0 && link.Kind == models.KindLocal && res.Reason == models.ReasonFileNotFound && pathPart != "" {
		e.fuzzy(pathPart, docPath, restore, add)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return tier(out[i].Confidence) < tier(out[j].Confidence)
	})
	return out
}

func (e *Engine) fuzzy(pathPart, docPath string, restore func(string) string, add func(models.FixCandidate)) {
	base := path.Base(pathPart)

	exact, err := e.idx.ByBase(base)
	if err == nil && len(exact) > 0 {
		for _, match := range exact {
			if repl, ok := relativeTo(docPath, match); ok {
				add(models.FixCandidate{
					Rule:        RuleFuzzySimilarity,
					Replacement: restore(repl),
					Description: fmt.Sprintf("same file name at %s", match),
					Confidence:  models.ConfidenceMedium,
				})
			}
		}
		return
	}

	similar, err := e.idx.MatchBase(base)
	if err != nil {
		return
	}
	for _, match := range similar {
		if repl, ok := relativeTo(docPath, match); ok {
			add(models.FixCandidate{
				Rule:        RuleFuzzySimilarity,
				Replacement: restore(repl),
				Description: fmt.Sprintf("similar file name at %s", match),
				Confidence:  models.ConfidenceManual,
			})
		}
	}
}

// relativeTo rewrites a corpus-relative path as a link target relative to
// the referencing document's directory.
func relativeTo(docPath, corpusPath string) (string, bool) {
	rel, err := filepath.Rel(path.Dir(docPath), corpusPath)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// trimUnbalancedParens strips trailing ')' characters that close nothing
// opened within the target.
func trimUnbalancedParens(target string) string {
	for strings.HasSuffix(target, ")") && strings.Count(target, ")") > strings.Count(target, "(") {
		target = strings.TrimSuffix(target, ")")
	}
	return target
}

func tier(c models.Confidence) int {
	switch c {
	case models.ConfidenceHigh:
		return 0
	case models.ConfidenceMedium:
		return 1
	default:
		return 2
	}
}
