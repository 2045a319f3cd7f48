package scan

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/starford/doclink/internal/models"
)

// Decision is the outcome of presenting fix candidates for one link.
type Decision struct {
	// Apply is false when the link should be left untouched.
	Apply bool
	// Replacement is the new target; either a candidate's or free text.
	Replacement string
	// Rule names the chosen candidate's rule, or "manual" for free text.
	Rule string
	// Description carries the candidate's description for the report.
	Description string
}

// DecisionProvider selects a repair for one invalid link. The orchestrator
// is agnostic to whether the decision comes from a human or a policy.
type DecisionProvider interface {
	Choose(docPath string, link models.Link, candidates []models.FixCandidate) (Decision, error)
}

// AutoProvider takes the top-ranked candidate and skips links with no
// candidates. Used in batch mode and under --yes. Manual-confidence
// candidates are never applied without a human.
type AutoProvider struct{}

// Choose implements DecisionProvider.
func (AutoProvider) Choose(_ string, _ models.Link, candidates []models.FixCandidate) (Decision, error) {
	if len(candidates) == 0 {
		return Decision{}, nil
	}
	top := candidates[0]
	if top.Confidence == models.ConfidenceManual {
		return Decision{}, nil
	}
	return Decision{Apply: true, Replacement: top.Replacement, Rule: top.Rule, Description: top.Description}, nil
}

// InteractiveProvider prompts on a line-based channel: a candidate number
// applies that candidate, "s" (or empty input) skips, and anything else is
// taken as a free-text replacement target.
type InteractiveProvider struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewInteractiveProvider creates a provider reading choices from in and
// writing prompts to out.
func NewInteractiveProvider(in io.Reader, out io.Writer) *InteractiveProvider {
	return &InteractiveProvider{scanner: bufio.NewScanner(in), out: out}
}

// Choose implements DecisionProvider.
func (p *InteractiveProvider) Choose(docPath string, link models.Link, candidates []models.FixCandidate) (Decision, error) {
	fmt.Fprintf(p.out, "%s:%d: broken link %q\n", docPath, link.Line, link.Target)
	for i, c := range candidates {
		fmt.Fprintf(p.out, "  [%d] %s (%s, %s)\n", i+1, c.Replacement, c.Rule, c.Confidence)
	}
	fmt.Fprintf(p.out, "choice (number, s to skip, or replacement target): ")

	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return Decision{}, fmt.Errorf("scan: read choice: %w", err)
		}
		// Input exhausted: skip the rest.
		return Decision{}, nil
	}
	answer := strings.TrimSpace(p.scanner.Text())
	switch {
	case answer == "" || answer == "s" || answer == "skip":
		return Decision{}, nil
	default:
		if n, err := strconv.Atoi(answer); err == nil {
			if n < 1 || n > len(candidates) {
				fmt.Fprintf(p.out, "no candidate %d, skipping\n", n)
				return Decision{}, nil
			}
			c := candidates[n-1]
			return Decision{Apply: true, Replacement: c.Replacement, Rule: c.Rule, Description: c.Description}, nil
		}
		return Decision{Apply: true, Replacement: answer, Rule: "manual", Description: "user-provided replacement"}, nil
	}
}
