package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/annotator/internal/completion"
)

// Handler holds API route handlers.
type Handler struct {
	svc *completion.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *completion.Service) *Handler {
	return &Handler{svc: svc}
}

// docPath extracts the document path from the URL (everything after /api/schema/).
// Supports encoded slashes from OpenAPI clients (e.g. projects%2Fgroceries.md).
func docPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// GetSettings handles GET /api/settings.
//
//	@Summary		Get the completion settings
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	SettingsRequest
//	@Security		BearerAuth
//	@Router			/settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Settings(r.Context())
	if err != nil {
		writeError(w, "get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// UpdateSettings handles PUT /api/settings.
//
//	@Summary		Replace the completion settings
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SettingsRequest	true	"New settings"
//	@Success		200		{object}	SettingsRequest
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings [put]
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	s, err := h.svc.UpdateSettings(r.Context(), req)
	if err != nil {
		writeError(w, "update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List indexed documents
//	@Tags			documents
//	@Produce		json
//	@Param			enabled	query		bool	false	"Only documents with annotations enabled"
//	@Success		200		{object}	DocumentListResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	enabledOnly, _ := strconv.ParseBool(r.URL.Query().Get("enabled"))
	docs, err := h.svc.ListDocuments(r.Context(), enabledOnly)
	if err != nil {
		writeError(w, "list documents", err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: docs, Total: len(docs)})
}

// GetSchema handles GET /api/schema/*.
//
//	@Summary		Get the annotation schema of a document
//	@Tags			documents
//	@Produce		json
//	@Param			path	path		string	true	"Document path"
//	@Success		200		{object}	SchemaResponse
//	@Security		BearerAuth
//	@Router			/schema/{path} [get]
func (h *Handler) GetSchema(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	schema, err := h.svc.Schema(r.Context(), path)
	if err != nil {
		writeError(w, "get schema", err, slog.String("path", path))
		return
	}
	writeJSON(w, http.StatusOK, SchemaResponse{Path: path, Schema: schema})
}

// Complete handles POST /api/complete.
//
//	@Summary		Detect a trigger on the cursor line and suggest annotations
//	@Tags			completion
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CompleteRequest	true	"Cursor line"
//	@Success		200		{object}	CompleteResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/complete [post]
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	var req CompleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.Complete(r.Context(), req)
	if err != nil {
		writeError(w, "complete", err, slog.String("path", req.Path))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Suggest handles GET /api/suggest.
//
//	@Summary		Suggest annotations for a query typed after the trigger phrase
//	@Tags			completion
//	@Produce		json
//	@Param			path	query		string	true	"Document path"
//	@Param			query	query		string	false	"Typed query"
//	@Success		200		{object}	CandidateListResponse
//	@Security		BearerAuth
//	@Router			/suggest [get]
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cands, err := h.svc.SuggestQuery(r.Context(), q.Get("path"), q.Get("query"))
	if err != nil {
		writeError(w, "suggest", err, slog.String("path", q.Get("path")))
		return
	}
	writeJSON(w, http.StatusOK, CandidateListResponse{Candidates: cands})
}

// Apply handles POST /api/apply.
//
//	@Summary		Replace a trigger span in a stored document
//	@Tags			completion
//	@Accept			json
//	@Produce		json
//	@Param			If-Match	header	string			false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	ApplyRequest	true	"Span and insertion text"
//	@Success		200			{object}	ApplyResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/apply [post]
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if ifMatch := r.Header.Get("If-Match"); ifMatch != "" {
		req.IfMatch = ifMatch
	}
	res, err := h.svc.Apply(r.Context(), req)
	if err != nil {
		writeError(w, "apply", err, slog.String("path", req.Path))
		return
	}
	w.Header().Set("ETag", `"`+res.Checksum+`"`)
	writeJSON(w, http.StatusOK, res)
}
