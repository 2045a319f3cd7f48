package internal

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// scanTestConfig materializes a corpus in a temp dir and returns a config
// pointing at it, with the index in another temp dir.
func scanTestConfig(t *testing.T, files map[string]string) *Config {
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
	cfg := NewDefaultConfig()
	cfg.Corpus.Root = root
	cfg.Index.Path = filepath.Join(t.TempDir(), "entry-test.db")
	return cfg
}

func TestRunScan_CleanCorpus(t *testing.T) {
	cfg := scanTestConfig(t, map[string]string{
		"README.md":     "# Readme\n\nSee [guide](docs/guide.md).\n",
		"docs/guide.md": "# Guide\n",
	})

	var out bytes.Buffer
	err := RunScan(context.Background(), WithConfig(cfg), WithIO(strings.NewReader(""), &out))
	if err != nil {
		t.Fatalf("RunScan = %v, want nil for a clean corpus", err)
	}
	if !strings.Contains(out.String(), "0 broken") {
		t.Errorf("report output = %q", out.String())
	}
}

func TestRunScan_BrokenLinksSignal(t *testing.T) {
	cfg := scanTestConfig(t, map[string]string{
		"README.md": "# Readme\n\n[gone](missing.md)\n",
	})

	err := RunScan(context.Background(), WithConfig(cfg), WithIO(strings.NewReader(""), &bytes.Buffer{}))
	if !errors.Is(err, ErrBrokenLinks) {
		t.Errorf("RunScan = %v, want ErrBrokenLinks", err)
	}
}

func TestRunScan_StrictWarningsSignal(t *testing.T) {
	// A placeholder-host link is skipped, not broken.
	files := map[string]string{
		"README.md": "# Readme\n\n[site](https://example.com/page)\n",
	}

	cfg := scanTestConfig(t, files)
	err := RunScan(context.Background(), WithConfig(cfg), WithIO(strings.NewReader(""), &bytes.Buffer{}))
	if err != nil {
		t.Errorf("RunScan without strict = %v, want nil", err)
	}

	cfg = scanTestConfig(t, files)
	err = RunScan(context.Background(), WithConfig(cfg),
		WithScanSettings(ScanSettings{Strict: true}),
		WithIO(strings.NewReader(""), &bytes.Buffer{}))
	if !errors.Is(err, ErrStrictWarnings) {
		t.Errorf("RunScan with strict = %v, want ErrStrictWarnings", err)
	}
}

func TestRunScan_BrokenLinksTrumpStrictWarnings(t *testing.T) {
	cfg := scanTestConfig(t, map[string]string{
		"README.md": "# Readme\n\n[gone](missing.md) and [site](https://example.com/x)\n",
	})

	err := RunScan(context.Background(), WithConfig(cfg),
		WithScanSettings(ScanSettings{Strict: true}),
		WithIO(strings.NewReader(""), &bytes.Buffer{}))
	if !errors.Is(err, ErrBrokenLinks) {
		t.Errorf("RunScan = %v, want ErrBrokenLinks to win over strict warnings", err)
	}
}

func TestRunScan_FixYesAppliesTopCandidate(t *testing.T) {
	cfg := scanTestConfig(t, map[string]string{
		"README.md": "# Readme\n\n[setup](setup)\n",
		"setup.md":  "# Setup\n",
	})

	err := RunScan(context.Background(), WithConfig(cfg),
		WithScanSettings(ScanSettings{Fix: true, Yes: true}),
		WithIO(strings.NewReader(""), &bytes.Buffer{}))
	if err != nil {
		t.Fatalf("RunScan = %v, want nil after successful fix", err)
	}

	data, err := os.ReadFile(filepath.Join(cfg.Corpus.Root, "README.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[setup](setup.md)") {
		t.Errorf("README.md = %q, want missing extension repaired", data)
	}
}

func TestRunScan_FixWithoutYesPrompts(t *testing.T) {
	cfg := scanTestConfig(t, map[string]string{
		"README.md": "# Readme\n\n[setup](setup)\n",
		"setup.md":  "# Setup\n",
	})

	// Choosing candidate 1 at the prompt applies it.
	var out bytes.Buffer
	err := RunScan(context.Background(), WithConfig(cfg),
		WithScanSettings(ScanSettings{Fix: true}),
		WithIO(strings.NewReader("1\n"), &out))
	if err != nil {
		t.Fatalf("RunScan = %v, want nil after interactive fix", err)
	}

	data, err := os.ReadFile(filepath.Join(cfg.Corpus.Root, "README.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[setup](setup.md)") {
		t.Errorf("README.md = %q, want chosen candidate applied", data)
	}
}
