package index

import (
	"log/slog"
	"path"
	"strings"

	"github.com/starford/doclink/internal/models"
	"github.com/starford/doclink/internal/parser"
	"github.com/starford/doclink/internal/storage"
)

// Sync walks the corpus and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
//
// patterns are the corpus include globs; fix suggestions only ever draw
// from files a scan would visit.
func Sync(db *DB, store storage.Provider, patterns []string, logger *slog.Logger) error {
	metas, err := store.List(patterns)
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, m.Path, m.Checksum, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteFile(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexFile extracts local-file references from data and upserts the file row.
func IndexFile(db *DB, filePath, checksum string, data []byte) error {
	var refs []string
	seen := make(map[string]struct{})
	for _, l := range parser.ExtractLinks(data) {
		if l.Kind != models.KindLocal {
			continue
		}
		target := normalizeRef(filePath, l.Target)
		if target == "" {
			continue
		}
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}
		refs = append(refs, target)
	}
	return db.UpsertFile(filePath, checksum, refs)
}

// normalizeRef maps a local link target to a corpus-relative path so refs
// from different documents to the same file compare equal. Targets escaping
// the corpus root are dropped.
func normalizeRef(source, target string) string {
	pathPart, _, _ := strings.Cut(target, "#")
	if pathPart == "" {
		return ""
	}
	var joined string
	if strings.HasPrefix(pathPart, "/") {
		joined = path.Clean(strings.TrimPrefix(pathPart, "/"))
	} else {
		joined = path.Clean(path.Join(path.Dir(source), pathPart))
	}
	if joined == "." || strings.HasPrefix(joined, "../") {
		return ""
	}
	return joined
}
