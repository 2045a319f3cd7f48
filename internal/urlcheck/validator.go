// Package urlcheck probes external URLs for existence with a per-scan cache.
package urlcheck

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starford/doclink/internal/models"
)

// DefaultTimeout bounds a single existence probe.
const DefaultTimeout = 5 * time.Second

// Config holds URL validation settings.
type Config struct {
	// Timeout bounds one probe; zero means DefaultTimeout.
	Timeout time.Duration
	// PlaceholderHosts are example/test domains reported valid-but-unverified.
	PlaceholderHosts []string
	// TrustedHosts are allowlisted domains exempt from probing.
	TrustedHosts []string
	// CheckAll forces probing even for placeholder/trusted hosts.
	CheckAll bool
}

// Validator issues HEAD probes and memoizes results for one scan run.
// It is built per scan invocation, never shared across scans, so repeated
// scans in the same process cannot observe stale entries.
type Validator struct {
	client      *http.Client
	placeholder []string
	trusted     []string
	checkAll    bool
	cache       map[string]models.ValidationResult
}

// New creates a Validator with an empty cache.
func New(cfg Config) *Validator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Validator{
		client:      &http.Client{Timeout: timeout},
		placeholder: cfg.PlaceholderHosts,
		trusted:     cfg.TrustedHosts,
		checkAll:    cfg.CheckAll,
		cache:       make(map[string]models.ValidationResult),
	}
}

// Reset discards all cached results. Callers that reuse one Validator
// across scan runs call this at run start so a later scan never sees a
// stale entry.
func (v *Validator) Reset() {
	v.cache = make(map[string]models.ValidationResult)
}

// Validate checks one URL. The cache key is the literal URL string: within
// one run a given URL hits the network at most once, and trivially different
// spellings (trailing slash, query string) are distinct entries. Failures
// are never retried within the run; rerunning the scan is the retry.
func (v *Validator) Validate(ctx context.Context, rawURL string) models.ValidationResult {
	if res, ok := v.cache[rawURL]; ok {
		return res
	}
	res := v.check(ctx, rawURL)
	v.cache[rawURL] = res
	return res
}

func (v *Validator) check(ctx context.Context, rawURL string) models.ValidationResult {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return models.ValidationResult{Valid: false, Reason: fmt.Sprintf("url parse error: %q has no host", rawURL)}
	}

	if !v.checkAll {
		if hostIn(u.Hostname(), v.placeholder) {
			return models.ValidationResult{Valid: true, Skipped: true, Reason: "placeholder host, not verified"}
		}
		if hostIn(u.Hostname(), v.trusted) {
			return models.ValidationResult{Valid: true, Skipped: true, Reason: "trusted host, not verified"}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return models.ValidationResult{Valid: false, Reason: fmt.Sprintf("url parse error: %v", err)}
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return models.ValidationResult{Valid: false, Reason: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return models.ValidationResult{Valid: true}
	}
	return models.ValidationResult{Valid: false, Reason: fmt.Sprintf("status %d", resp.StatusCode)}
}

// hostIn matches a hostname against a list, including subdomains
// (docs.example.com matches example.com).
func hostIn(host string, list []string) bool {
	host = strings.ToLower(host)
	for _, h := range list {
		h = strings.ToLower(h)
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
