// Package models defines the domain types for doclink.
package models

import "time"

// LinkKind classifies a link target by its leading characters.
type LinkKind string

const (
	// KindAnchor is a same-document fragment reference ("#section").
	KindAnchor LinkKind = "anchor-only"
	// KindLocal is a file-system reference, optionally with a "#fragment".
	KindLocal LinkKind = "local-file"
	// KindExternal is a network URL (http:// or https:// prefix).
	KindExternal LinkKind = "external"
)

// Link is a single cross-reference extracted from a document.
// Span is the exact source text of the link and is what fix application
// substitutes, scoped to Line so identical links elsewhere are untouched.
type Link struct {
	Text   string   `json:"text"`
	Target string   `json:"target"`
	Line   int      `json:"line"`
	Kind   LinkKind `json:"kind"`
	Span   string   `json:"span"`
}

// Heading is a structural marker within a document.
type Heading struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
	Slug  string `json:"slug"`
}

// Document is one unit of the corpus under validation.
type Document struct {
	Path     string    `json:"path"`
	Content  []byte    `json:"-"`
	Headings []Heading `json:"headings,omitempty"`
}

// ValidationResult is the outcome of resolving one link.
// Skipped marks external URLs that were exempted from probing
// (placeholder or trusted hosts): valid but unverified.
type ValidationResult struct {
	Valid      bool   `json:"valid"`
	Skipped    bool   `json:"skipped,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Failure reasons used across resolver and URL validator.
const (
	ReasonFileNotFound   = "file-not-found"
	ReasonAnchorNotFound = "anchor-not-found"
)

// Confidence ranks a fix candidate. High candidates sort first.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceManual Confidence = "manual"
)

// FixCandidate is a proposed repair for one invalid link.
type FixCandidate struct {
	Rule        string     `json:"rule"`
	Replacement string     `json:"replacement"`
	Description string     `json:"description"`
	Confidence  Confidence `json:"confidence"`
}

// FileMetadata is a lightweight representation returned by corpus listing.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
