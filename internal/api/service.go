package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/starford/doclink/internal/index"
	"github.com/starford/doclink/internal/scan"
	"github.com/starford/doclink/internal/storage"
)

// Service coordinates storage, index and the link checker for the API layer.
// It serializes checker access: the orchestrator's URL cache is not safe for
// concurrent use, and overlapping full scans would double-probe the network.
type Service struct {
	store   storage.Provider
	db      index.CorpusIndex
	checker *scan.Orchestrator

	runMu sync.Mutex // guards checker invocations

	mu        sync.RWMutex
	latest    *scan.Report
	docChecks map[string]*scan.Report
}

// NewService creates a new API service.
func NewService(store storage.Provider, db index.CorpusIndex, checker *scan.Orchestrator) *Service {
	return &Service{
		store:     store,
		db:        db,
		checker:   checker,
		docChecks: make(map[string]*scan.Report),
	}
}

// DocumentListItem is a lightweight item in a list response.
type DocumentListItem struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentDetail is the response payload for a single document. Refs lists
// the documents that link to this one.
type DocumentDetail struct {
	Path      string       `json:"path"`
	Content   string       `json:"content"`
	Refs      []string     `json:"refs"`
	LastCheck *scan.Report `json:"last_check,omitempty"`
}

// TriggerScan runs a full corpus scan and stores the result as the latest
// report.
func (s *Service) TriggerScan(ctx context.Context) (*scan.Report, error) {
	s.runMu.Lock()
	report, err := s.checker.Run(ctx)
	s.runMu.Unlock()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.latest = report
	s.mu.Unlock()
	return report, nil
}

// LatestReport returns the most recent full-scan report, or nil when no scan
// has run yet.
func (s *Service) LatestReport() *scan.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// CheckDocument re-validates one document and remembers the result.
func (s *Service) CheckDocument(ctx context.Context, path string) (*scan.Report, error) {
	if !s.store.Exists(path) {
		return nil, fmt.Errorf("document not found: %s", path)
	}

	s.runMu.Lock()
	report := s.checker.CheckDocument(ctx, path)
	s.runMu.Unlock()

	s.mu.Lock()
	s.docChecks[path] = report
	s.mu.Unlock()
	return report, nil
}

// ForgetDocument drops the remembered check result for a deleted document.
func (s *Service) ForgetDocument(path string) {
	s.mu.Lock()
	delete(s.docChecks, path)
	s.mu.Unlock()
}

// ListDocuments enumerates the corpus.
func (s *Service) ListDocuments() ([]DocumentListItem, error) {
	metas, err := s.store.List(nil)
	if err != nil {
		return nil, err
	}
	items := make([]DocumentListItem, len(metas))
	for i, m := range metas {
		items[i] = DocumentListItem{Path: m.Path, Checksum: m.Checksum, UpdatedAt: m.UpdatedAt}
	}
	return items, nil
}

// GetDocument returns a document's content, the documents referencing it,
// and the last check result if one exists.
func (s *Service) GetDocument(path string) (*DocumentDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		return nil, err
	}
	refs, err := s.db.Refs(path)
	if err != nil {
		return nil, err
	}
	if refs == nil {
		refs = []string{}
	}

	s.mu.RLock()
	last := s.docChecks[path]
	s.mu.RUnlock()

	return &DocumentDetail{
		Path:      path,
		Content:   string(data),
		Refs:      refs,
		LastCheck: last,
	}, nil
}

// Refs returns the documents holding a local link to the given target.
func (s *Service) Refs(path string) ([]string, error) {
	refs, err := s.db.Refs(path)
	if err != nil {
		return nil, err
	}
	if refs == nil {
		refs = []string{}
	}
	return refs, nil
}
