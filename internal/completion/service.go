// Package completion joins the annotation core with the vault, the settings
// store and the document index. It is the single entry point used by the
// HTTP, WebSocket and MCP transports.
package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/annotator/internal/annotation"
	"github.com/starford/annotator/internal/apperr"
	"github.com/starford/annotator/internal/checksum"
	"github.com/starford/annotator/internal/editor"
	"github.com/starford/annotator/internal/index"
	"github.com/starford/annotator/internal/models"
	"github.com/starford/annotator/internal/parser"
	"github.com/starford/annotator/internal/storage"
)

// Service coordinates completion requests.
type Service struct {
	store      storage.Provider
	settings   index.SettingsStore
	docs       index.DocumentIndex
	defaults   annotation.Settings
	suggester  *annotation.Suggester
	logger     *slog.Logger
	onSettings func(annotation.Settings)
	sessions   *registry
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for default content.
func WithClock(c annotation.Clock) Option {
	return func(s *Service) { s.suggester = annotation.NewSuggester(c) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithDefaults sets the settings used when none are stored.
func WithDefaults(d annotation.Settings) Option {
	return func(s *Service) { s.defaults = d }
}

// WithSettingsHook registers a callback run after settings are saved.
func WithSettingsHook(fn func(annotation.Settings)) Option {
	return func(s *Service) { s.onSettings = fn }
}

// NewService creates a completion service. docs may be nil when no index is
// available; ListDocuments then returns an empty list.
func NewService(store storage.Provider, settings index.SettingsStore, docs index.DocumentIndex, opts ...Option) *Service {
	s := &Service{
		store:     store,
		settings:  settings,
		docs:      docs,
		defaults:  annotation.DefaultSettings(),
		suggester: annotation.NewSuggester(nil),
		logger:    slog.Default(),
		sessions:  newRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settings returns the effective user settings.
func (s *Service) Settings(ctx context.Context) (annotation.Settings, error) {
	if s.settings == nil {
		return s.defaults, nil
	}
	return s.settings.LoadSettings(ctx, s.defaults)
}

// UpdateSettings validates and persists new settings.
func (s *Service) UpdateSettings(ctx context.Context, next annotation.Settings) (annotation.Settings, error) {
	if err := next.Validate(); err != nil {
		return annotation.Settings{}, fmt.Errorf("completion: %w", err)
	}
	if s.settings == nil {
		return annotation.Settings{}, fmt.Errorf("completion: no settings store")
	}
	if err := s.settings.SaveSettings(ctx, next); err != nil {
		return annotation.Settings{}, err
	}
	s.logger.Info("settings updated",
		slog.String("trigger_phrase", next.TriggerPhrase),
		slog.String("separator", next.Separator))
	if s.onSettings != nil {
		s.onSettings(next)
	}
	return next, nil
}

// Schema reads the document at path and returns the schema for one
// filtering pass. An empty path, a missing document or a missing header
// yields an inactive schema, not an error.
func (s *Service) Schema(ctx context.Context, path string) (annotation.Schema, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return annotation.Schema{}, err
	}
	if path == "" {
		s.logger.Debug("completion: no active document")
		schema, _ := annotation.SchemaFromMetadata(settings, nil)
		return schema, nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("completion: document not found", slog.String("path", path))
			schema, _ := annotation.SchemaFromMetadata(settings, nil)
			return schema, nil
		}
		return annotation.Schema{}, err
	}
	return s.schemaFor(settings, path, data), nil
}

func (s *Service) schemaFor(settings annotation.Settings, path string, data []byte) annotation.Schema {
	schema, diags := annotation.SchemaFromMetadata(settings, parser.Frontmatter(data))
	for _, d := range diags {
		s.logger.Debug("completion: malformed annotation", slog.String("path", path), slog.String("detail", d))
	}
	if !schema.Active() {
		s.logger.Debug("completion: configuration absent", slog.String("path", path))
	}
	return schema
}

// CompleteRequest is a stateless completion request for the line under the
// cursor. Start, when set, is the span start returned by an earlier call and
// keeps the trigger sticky while the query grows.
type CompleteRequest struct {
	Path   string               `json:"path"`
	Line   string               `json:"line"`
	Cursor annotation.Position  `json:"cursor"`
	Start  *annotation.Position `json:"start,omitempty"`
}

// CompleteResult is the outcome of a completion request.
type CompleteResult struct {
	Triggered  bool                   `json:"triggered"`
	Span       *annotation.Span       `json:"span,omitempty"`
	Candidates []annotation.Candidate `json:"candidates"`
}

// Complete runs trigger detection, filtering and rendering in one pass.
func (s *Service) Complete(ctx context.Context, req CompleteRequest) (*CompleteResult, error) {
	schema, err := s.Schema(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	text := editor.Line{Index: req.Cursor.Line, Text: req.Line}

	var (
		span annotation.Span
		ok   bool
	)
	if req.Start != nil {
		span, ok = annotation.Extend(*req.Start, req.Cursor, text, schema.TriggerPhrase)
	} else {
		span, ok = s.suggester.OnTrigger(req.Cursor, text, schema.TriggerPhrase)
	}
	if !ok {
		return &CompleteResult{Candidates: []annotation.Candidate{}}, nil
	}
	return &CompleteResult{
		Triggered:  true,
		Span:       &span,
		Candidates: nonNil(s.suggester.GetSuggestions(annotation.Context{Span: span, Schema: schema})),
	}, nil
}

// SuggestQuery renders candidates for a query typed after the trigger
// phrase, without any cursor context.
func (s *Service) SuggestQuery(ctx context.Context, path, query string) ([]annotation.Candidate, error) {
	schema, err := s.Schema(ctx, path)
	if err != nil {
		return nil, err
	}
	return nonNil(s.suggester.Suggest(annotation.ParseQuery(query, schema.Separator), schema)), nil
}

// ApplyRequest replaces a trigger span in a stored document.
type ApplyRequest struct {
	Path    string          `json:"path"`
	Span    annotation.Span `json:"span"`
	Text    string          `json:"text"`
	IfMatch string          `json:"ifMatch,omitempty"`
}

// ApplyResult describes the document after an insertion.
type ApplyResult struct {
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
	Content  string `json:"content"`
}

// Apply replaces [Span.Start, Span.End) with Text after checking that the
// document version matches IfMatch and that the span still reads as the
// trigger phrase followed by Span.Query.
func (s *Service) Apply(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	if req.Path == "" {
		return nil, apperr.ErrNotFound
	}
	data, err := s.store.Read(req.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if !checksum.Matches(data, req.IfMatch) {
		return nil, apperr.ErrConflict
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	schema := s.schemaFor(settings, req.Path, data)

	buf := editor.NewBuffer(string(data))
	if got, want := buf.Range(req.Span.Start, req.Span.End), schema.TriggerPhrase+req.Span.Query; got != want {
		s.logger.Debug("completion: span mismatch",
			slog.String("path", req.Path),
			slog.String("got", got),
			slog.String("want", want))
		return nil, apperr.ErrSpanMismatch
	}
	buf.Replace(req.Span.Start, req.Span.End, req.Text)

	out := []byte(buf.String())
	if err := s.store.Write(req.Path, out); err != nil {
		return nil, err
	}
	s.logger.Info("annotation inserted", slog.String("path", req.Path), slog.String("text", req.Text))
	return &ApplyResult{
		Path:     req.Path,
		Checksum: checksum.Sum(out),
		Content:  string(out),
	}, nil
}

// ListDocuments returns indexed documents, optionally only those with
// annotations enabled.
func (s *Service) ListDocuments(ctx context.Context, enabledOnly bool) ([]models.DocumentSummary, error) {
	if s.docs == nil {
		return []models.DocumentSummary{}, nil
	}
	return s.docs.ListDocuments(ctx, enabledOnly)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
