package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempCorpus(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempCorpus(t)
	content := []byte("# Hello\nWorld\n")
	if err := s.Write("doc.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("doc.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempCorpus(t)
	if err := s.Write("a/b/c.md", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("a/b/c.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestList_DefaultMarkdownOnly(t *testing.T) {
	s := tempCorpus(t)
	_ = s.Write("a.md", []byte("a"))
	_ = s.Write("sub/b.md", []byte("b"))
	_ = s.Write("readme.txt", []byte("not md"))

	items, err := s.List(nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len = %d, want 2", len(items))
	}
}

func TestList_IncludePatterns(t *testing.T) {
	s := tempCorpus(t)
	_ = s.Write("README.md", []byte("root"))
	_ = s.Write("docs/guide.md", []byte("g"))
	_ = s.Write("docs/deep/nested.md", []byte("n"))
	_ = s.Write("src/components/button/button.md", []byte("c"))
	_ = s.Write("src/components/button/button.tsx", []byte("code"))
	_ = s.Write("scratch/notes.md", []byte("x"))

	items, err := s.List([]string{"docs/**/*.md", "src/components/**/*.md", "README.md"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	got := make(map[string]bool, len(items))
	for _, it := range items {
		got[it.Path] = true
	}
	for _, want := range []string{"README.md", "docs/guide.md", "docs/deep/nested.md", "src/components/button/button.md"} {
		if !got[want] {
			t.Errorf("missing %s in %v", want, got)
		}
	}
	if got["scratch/notes.md"] || got["src/components/button/button.tsx"] {
		t.Errorf("unexpected entries in %v", got)
	}
}

func TestExists(t *testing.T) {
	s := tempCorpus(t)
	_ = s.Write("here.md", []byte("x"))
	if !s.Exists("here.md") {
		t.Error("Exists = false for existing file")
	}
	if s.Exists("missing.md") {
		t.Error("Exists = true for missing file")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempCorpus(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
		if s.Exists(p) {
			t.Errorf("Exists(%q) must be false", p)
		}
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s := tempCorpus(t)
	_ = s.Write("atomic.md", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("atomic.md", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.md")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	// Confirm no leftover temp files.
	matches, _ := filepath.Glob(filepath.Join(s.root, ".doclink-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/doclink-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "doclink-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestMatchGlob(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"README.md", "README.md", true},
		{"README.md", "docs/README.md", false},
		{"docs/**/*.md", "docs/a.md", true},
		{"docs/**/*.md", "docs/x/y/z.md", true},
		{"docs/**/*.md", "src/a.md", false},
		{"docs/**", "docs/anything/at/all.txt", true},
		{"**/*.md", "deep/down/file.md", true},
		{"*.md", "top.md", true},
		{"*.md", "sub/top.md", false},
	}
	for _, c := range cases {
		if got := matchGlob(c.pattern, c.path); got != c.want {
			t.Errorf("matchGlob(%q, %q) = %v, want %v", c.pattern, c.path, got, c.want)
		}
	}
}
