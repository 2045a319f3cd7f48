// Package apperr defines sentinel errors for the scan failure taxonomy.
// Everything here is caught at the document or link boundary and folded
// into the aggregate report; only corpus enumeration failure aborts a run.
package apperr

import "errors"

var (
	// ErrParseFailure marks a document that could not be read or decoded.
	ErrParseFailure = errors.New("document parse failure")
	// ErrFixApplication marks a repaired document that could not be saved.
	ErrFixApplication = errors.New("fix application failure")
	// ErrCorpusEnumeration marks the single fatal condition: the corpus
	// could not be listed at all.
	ErrCorpusEnumeration = errors.New("corpus enumeration failure")
)
