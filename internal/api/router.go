package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/annotator/internal/completion"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *completion.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Settings.
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)

	// Documents and their schemas.
	r.Get("/documents", h.ListDocuments)
	r.Get("/schema/*", h.GetSchema)

	// Stateless completion.
	r.Post("/complete", h.Complete)
	r.Get("/suggest", h.Suggest)
	r.Post("/apply", h.Apply)

	// Live sessions.
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", h.ListSessions)
		r.Post("/", h.OpenSession)
		r.Post("/{id}/keystroke", h.Keystroke)
		r.Post("/{id}/select", h.Select)
		r.Delete("/{id}", h.CloseSession)
		r.Get("/{id}/ws", h.SessionWS)
	})

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
