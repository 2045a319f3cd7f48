package storage

import (
	"path/filepath"
	"strings"
)

// matchAny reports whether rel (slash-separated, corpus-relative) matches at
// least one include pattern. Patterns use filepath.Match syntax plus ** for
// recursive matching. With no patterns, any .md file matches.
func matchAny(patterns []string, rel string) bool {
	if len(patterns) == 0 {
		return strings.HasSuffix(rel, ".md")
	}
	for _, p := range patterns {
		if matchGlob(p, rel) {
			return true
		}
	}
	return false
}

// matchGlob matches one pattern against a path. A single ** segment splits
// the pattern into a literal prefix and a suffix that may match at any
// depth below it.
func matchGlob(pattern, path string) bool {
	if !strings.Contains(pattern, "**") {
		ok, _ := filepath.Match(pattern, path)
		return ok
	}

	parts := strings.SplitN(pattern, "**", 2)
	prefix := strings.TrimSuffix(parts[0], "/")
	suffix := strings.TrimPrefix(parts[1], "/")

	if prefix != "" {
		if path != prefix && !strings.HasPrefix(path, prefix+"/") {
			return false
		}
		path = strings.TrimPrefix(strings.TrimPrefix(path, prefix), "/")
	}
	if suffix == "" {
		return true
	}
	// The suffix may match the remainder at any depth.
	segs := strings.Split(path, "/")
	for i := range segs {
		if ok, _ := filepath.Match(suffix, strings.Join(segs[i:], "/")); ok {
			return true
		}
	}
	return false
}
