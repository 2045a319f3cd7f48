// Package testutil provides shared test helpers for setting up corpora and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/doclink/internal/checksum"
	"github.com/starford/doclink/internal/index"
	"github.com/starford/doclink/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "doclink-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestCorpus creates a temporary corpus directory populated with the given
// documents and returns its root and a storage.Provider over it.
func TestCorpus(t *testing.T, files map[string]string) (string, storage.Provider) {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// IndexCorpus loads every document from the provider into the index.
func IndexCorpus(t *testing.T, db *index.DB, store storage.Provider) {
	t.Helper()
	metas, err := store.List(nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range metas {
		data, err := store.Read(m.Path)
		if err != nil {
			t.Fatal(err)
		}
		if err := index.IndexFile(db, m.Path, checksum.Sum(data), data); err != nil {
			t.Fatal(err)
		}
	}
}
