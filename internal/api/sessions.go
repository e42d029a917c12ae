package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListSessions handles GET /api/sessions.
func (h *Handler) ListSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SessionListResponse{Sessions: h.svc.Sessions()})
}

// OpenSession handles POST /api/sessions.
//
//	@Summary		Open a suggestion session for a document
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			body	body		OpenSessionRequest	true	"Document path"
//	@Success		201		{object}	completion.SessionInfo
//	@Security		BearerAuth
//	@Router			/sessions [post]
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusCreated, h.svc.OpenSession(req.Path))
}

// Keystroke handles POST /api/sessions/{id}/keystroke.
//
//	@Summary		Feed an input event to a session
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Session ID"
//	@Param			body	body		KeystrokeRequest	true	"Cursor line"
//	@Success		200		{object}	completion.SessionUpdate
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id}/keystroke [post]
func (h *Handler) Keystroke(w http.ResponseWriter, r *http.Request) {
	var req KeystrokeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	upd, err := h.svc.Keystroke(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, "keystroke", err)
		return
	}
	writeJSON(w, http.StatusOK, upd)
}

// Select handles POST /api/sessions/{id}/select.
//
//	@Summary		Pick a candidate and end the session
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Session ID"
//	@Param			body	body		SelectRequest	true	"Candidate index"
//	@Success		200		{object}	completion.Insertion
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id}/select [post]
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ins, err := h.svc.Select(chi.URLParam(r, "id"), req.Index)
	if err != nil {
		writeError(w, "select", err)
		return
	}
	writeJSON(w, http.StatusOK, ins)
}

// CloseSession handles DELETE /api/sessions/{id}.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CloseSession(chi.URLParam(r, "id")); err != nil {
		writeError(w, "close session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
