package index

import (
	"context"

	"github.com/starford/annotator/internal/annotation"
	"github.com/starford/annotator/internal/models"
)

// DocumentIndex is the listing side of the index.
type DocumentIndex interface {
	UpsertDocument(ctx context.Context, d models.DocumentSummary) error
	DeleteDocument(ctx context.Context, path string) error
	GetDocument(ctx context.Context, path string) (*models.DocumentSummary, error)
	ListDocuments(ctx context.Context, enabledOnly bool) ([]models.DocumentSummary, error)
	AllChecksums(ctx context.Context) (map[string]string, error)
}

// SettingsStore persists the user completion settings.
type SettingsStore interface {
	LoadSettings(ctx context.Context, defaults annotation.Settings) (annotation.Settings, error)
	SaveSettings(ctx context.Context, s annotation.Settings) error
}

var (
	_ DocumentIndex = (*DB)(nil)
	_ SettingsStore = (*DB)(nil)
)
