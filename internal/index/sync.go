package index

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/annotator/internal/annotation"
	"github.com/starford/annotator/internal/checksum"
	"github.com/starford/annotator/internal/models"
	"github.com/starford/annotator/internal/parser"
	"github.com/starford/annotator/internal/storage"
)

// Sync walks the vault and brings the index up to date:
//   - new/changed documents are summarised and upserted
//   - documents removed from disk are deleted from the index
func Sync(ctx context.Context, db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums(ctx)
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
		if err := indexFile(ctx, db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDocument(ctx, p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// Summarize extracts the index entry for a document from its raw content.
func Summarize(path string, data []byte) models.DocumentSummary {
	schema, diags := annotation.SchemaFromMetadata(annotation.DefaultSettings(), parser.Frontmatter(data))
	names := make([]string, len(schema.Annotations))
	for i, a := range schema.Annotations {
		names[i] = a.Name
	}
	return models.DocumentSummary{
		Path:        path,
		Checksum:    checksum.Sum(data),
		Enabled:     schema.Enabled,
		Annotations: names,
		Skipped:     len(diags),
		UpdatedAt:   time.Now(),
	}
}

func indexFile(ctx context.Context, db *DB, path string, data []byte) error {
	return db.UpsertDocument(ctx, Summarize(path, data))
}
