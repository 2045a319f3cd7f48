package scan

import (
	"fmt"
	"io"
	"time"
)

// UnfixedLink is one invalid link that survived the scan, with enough
// context to act on without re-running.
type UnfixedLink struct {
	File       string `json:"file"`
	Line       int    `json:"line"`
	Target     string `json:"target"`
	Reason     string `json:"reason"`
	Suggestion string `json:"suggestion,omitempty"`
}

// AppliedFix records one substitution made in fix mode.
type AppliedFix struct {
	File        string `json:"file"`
	Line        int    `json:"line"`
	OldTarget   string `json:"old_target"`
	NewTarget   string `json:"new_target"`
	Rule        string `json:"rule"`
	Description string `json:"description,omitempty"`
}

// Report aggregates one whole scan.
type Report struct {
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
	Documents     int           `json:"documents"`
	TotalLinks    int           `json:"total_links"`
	Valid         int           `json:"valid"`
	Skipped       int           `json:"skipped"`
	Fixed         int           `json:"fixed"`
	ParseFailures int           `json:"parse_failures"`
	Unfixed       []UnfixedLink `json:"unfixed,omitempty"`
	Fixes         []AppliedFix  `json:"fixes,omitempty"`
}

// Clean reports whether the scan found no unresolved invalid links.
func (r *Report) Clean() bool {
	return len(r.Unfixed) == 0
}

// Warnings counts non-fatal conditions: unreadable documents and external
// links that were skipped rather than verified. Strict mode fails on these.
func (r *Report) Warnings() int {
	return r.ParseFailures + r.Skipped
}

// Write renders the human-readable report grouped by file.
func (r *Report) Write(w io.Writer) {
	byFile := make(map[string][]UnfixedLink)
	var order []string
	for _, u := range r.Unfixed {
		if _, seen := byFile[u.File]; !seen {
			order = append(order, u.File)
		}
		byFile[u.File] = append(byFile[u.File], u)
	}

	for _, file := range order {
		fmt.Fprintf(w, "%s\n", file)
		for _, u := range byFile[file] {
			fmt.Fprintf(w, "  line %d: %s (%s)\n", u.Line, u.Target, u.Reason)
			if u.Suggestion != "" {
				fmt.Fprintf(w, "    %s\n", u.Suggestion)
			}
		}
	}

	if len(r.Fixes) > 0 {
		fmt.Fprintln(w, "applied fixes:")
		for _, f := range r.Fixes {
			fmt.Fprintf(w, "  %s:%d: %s -> %s [%s]\n", f.File, f.Line, f.OldTarget, f.NewTarget, f.Rule)
		}
	}

	fmt.Fprintf(w, "checked %d documents, %d links: %d valid, %d skipped, %d fixed, %d broken\n",
		r.Documents, r.TotalLinks, r.Valid, r.Skipped, r.Fixed, len(r.Unfixed))
}
