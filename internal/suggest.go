package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/annotator/internal/completion"
	"github.com/starford/annotator/internal/storage"
)

// Suggest prints the candidates for query against the header of file, one
// per line. It needs no index: settings come from the configuration only.
func Suggest(ctx context.Context, file, query string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, app.config.App.LogLevel)

	abs, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", file, err)
	}
	store, err := storage.NewFS(filepath.Dir(abs))
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	svc := completion.NewService(store, nil, nil,
		completion.WithLogger(logger),
		completion.WithDefaults(app.config.Completion.Settings()),
		completion.WithClock(app.clock))

	name := filepath.Base(abs)
	if _, err := store.Read(name); err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	cands, err := svc.SuggestQuery(ctx, name, query)
	if err != nil {
		return err
	}
	logger.Debug("suggest", slog.String("file", abs), slog.Int("candidates", len(cands)))
	for _, c := range cands {
		if _, err := fmt.Fprintln(app.out, c.InsertionText); err != nil {
			return err
		}
	}
	return nil
}
