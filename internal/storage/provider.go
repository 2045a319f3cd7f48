// Package storage defines the corpus file-system abstraction.
package storage

import "github.com/starford/doclink/internal/models"

// Provider is the interface for corpus file operations.
type Provider interface {
	// List returns metadata for every file under the corpus root matching
	// at least one of the include patterns. Empty patterns list every
	// Markdown file.
	List(patterns []string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the root).
	Write(path string, content []byte) error
	// Exists reports whether path (relative to the root) exists on disk.
	Exists(path string) bool
	// Root returns the absolute corpus root directory.
	Root() string
}
