// Package scan drives the end-to-end link check and repair workflow.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/doclink/internal/apperr"
	"github.com/starford/doclink/internal/models"
	"github.com/starford/doclink/internal/parser"
	"github.com/starford/doclink/internal/resolve"
	"github.com/starford/doclink/internal/storage"
	"github.com/starford/doclink/internal/suggest"
	"github.com/starford/doclink/internal/urlcheck"
)

// Options selects the invocation mode for one scan.
type Options struct {
	// Include are the corpus glob patterns; empty means every .md file.
	Include []string
	// Fix enables repairs; without it the scan only reports.
	Fix bool
	// DryRun computes and reports fixes without writing any document.
	DryRun bool
}

// Orchestrator walks the corpus depth-first, document by document, and
// within each document link by link in extraction order. Resolution is
// deliberately sequential: diagnostics stay correlated with prompts, the
// URL cache fills deterministically, and third-party services are not
// hammered concurrently.
type Orchestrator struct {
	store    storage.Provider
	resolver *resolve.Resolver
	urls     *urlcheck.Validator
	engine   *suggest.Engine
	decider  DecisionProvider
	logger   *slog.Logger
	opts     Options
}

// New assembles an Orchestrator. decider may be nil when opts.Fix is false.
func New(store storage.Provider, resolver *resolve.Resolver, urls *urlcheck.Validator,
	engine *suggest.Engine, decider DecisionProvider, logger *slog.Logger, opts Options) *Orchestrator {
	if decider == nil {
		decider = AutoProvider{}
	}
	return &Orchestrator{
		store:    store,
		resolver: resolver,
		urls:     urls,
		engine:   engine,
		decider:  decider,
		logger:   logger,
		opts:     opts,
	}
}

// Run scans the whole corpus and returns the aggregate report. The only
// fatal condition is failing to enumerate the corpus at all; every other
// failure is folded into the report.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	metas, err := o.store.List(o.opts.Include)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrCorpusEnumeration, err)
	}

	// The URL cache lives for exactly one run.
	o.urls.Reset()

	report := &Report{StartedAt: time.Now()}
	for _, m := range metas {
		o.scanDocument(ctx, m.Path, report, o.opts)
	}
	report.Duration = time.Since(report.StartedAt)
	return report, nil
}

// CheckDocument validates a single document (no repairs) and returns a
// report scoped to it. The serve-mode watcher uses this for incremental
// re-checks. It never mutates the orchestrator; callers still must not
// overlap it with Run, because the URL cache is shared.
func (o *Orchestrator) CheckDocument(ctx context.Context, path string) *Report {
	report := &Report{StartedAt: time.Now()}
	opts := o.opts
	opts.Fix = false
	o.scanDocument(ctx, path, report, opts)
	report.Duration = time.Since(report.StartedAt)
	return report
}

func (o *Orchestrator) scanDocument(ctx context.Context, docPath string, report *Report, opts Options) {
	data, err := o.store.Read(docPath)
	if err != nil {
		o.logger.Warn("scan: document unreadable",
			slog.String("path", docPath),
			slog.String("error", fmt.Errorf("%w: %v", apperr.ErrParseFailure, err).Error()))
		report.ParseFailures++
		return
	}
	report.Documents++

	links := parser.ExtractLinks(data)
	content := string(data)
	changed := false

	for _, link := range links {
		report.TotalLinks++

		res := o.resolveLink(ctx, link, docPath)
		if res.Valid {
			if res.Skipped {
				report.Skipped++
			} else {
				report.Valid++
			}
			continue
		}

		candidates := o.engine.Suggest(link, res, docPath)

		if opts.Fix {
			decision, decErr := o.decider.Choose(docPath, link, candidates)
			if decErr != nil {
				o.logger.Warn("scan: decision failed",
					slog.String("path", docPath),
					slog.String("error", decErr.Error()))
			} else if decision.Apply {
				if updated, ok := applyFix(content, link, decision.Replacement); ok {
					content = updated
					changed = true
					report.Fixed++
					report.Fixes = append(report.Fixes, AppliedFix{
						File:        docPath,
						Line:        link.Line,
						OldTarget:   link.Target,
						NewTarget:   decision.Replacement,
						Rule:        decision.Rule,
						Description: decision.Description,
					})
					continue
				}
				o.logger.Warn("scan: link span not found for substitution",
					slog.String("path", docPath),
					slog.Int("line", link.Line),
					slog.String("span", link.Span))
			}
		}

		report.Unfixed = append(report.Unfixed, UnfixedLink{
			File:       docPath,
			Line:       link.Line,
			Target:     link.Target,
			Reason:     res.Reason,
			Suggestion: suggestionText(res, candidates),
		})
	}

	// One write per document, after every link has been processed.
	if changed && !opts.DryRun {
		if err := o.store.Write(docPath, []byte(content)); err != nil {
			o.logger.Error("scan: cannot save repaired document",
				slog.String("path", docPath),
				slog.String("error", fmt.Errorf("%w: %v", apperr.ErrFixApplication, err).Error()))
		}
	}
}

func (o *Orchestrator) resolveLink(ctx context.Context, link models.Link, docPath string) models.ValidationResult {
	switch link.Kind {
	case models.KindExternal:
		return o.urls.Validate(ctx, link.Target)
	default:
		return o.resolver.Resolve(link.Target, docPath)
	}
}

// suggestionText picks the diagnostic shown for an unfixed link: the
// resolver's own hint (available anchors) wins, otherwise the top candidate.
func suggestionText(res models.ValidationResult, candidates []models.FixCandidate) string {
	if res.Suggestion != "" {
		return res.Suggestion
	}
	if len(candidates) > 0 {
		return fmt.Sprintf("did you mean %s? (%s)", candidates[0].Replacement, candidates[0].Rule)
	}
	return ""
}

// applyFix substitutes the link's span on its recorded line only, so two
// textually identical links on different lines are patched independently.
func applyFix(content string, link models.Link, replacement string) (string, bool) {
	lines := strings.Split(content, "\n")
	if link.Line < 1 || link.Line > len(lines) {
		return content, false
	}
	line := lines[link.Line-1]
	if !strings.Contains(line, link.Span) {
		return content, false
	}
	lines[link.Line-1] = strings.Replace(line, link.Span, renderSpan(link, replacement), 1)
	return strings.Join(lines, "\n"), true
}

// renderSpan rebuilds the link text with a new target, preserving the
// original display text. Bare URLs are replaced outright.
func renderSpan(link models.Link, replacement string) string {
	if link.Span == link.Target {
		return replacement
	}
	return "[" + link.Text + "](" + replacement + ")"
}
