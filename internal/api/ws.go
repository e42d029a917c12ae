package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/starford/annotator/internal/annotation"
	"github.com/starford/annotator/internal/completion"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocket message types.
const (
	wsKeystroke = "keystroke"
	wsSelect    = "select"
	wsClose     = "close"
	wsUpdate    = "update"
	wsInsert    = "insert"
	wsError     = "error"
	wsClosed    = "closed"
)

type wsMessage struct {
	Type   string               `json:"type"`
	Line   string               `json:"line,omitempty"`
	Cursor *annotation.Position `json:"cursor,omitempty"`
	Index  int                  `json:"index,omitempty"`

	Update    *completion.SessionUpdate `json:"update,omitempty"`
	Insertion *completion.Insertion     `json:"insertion,omitempty"`
	Error     string                    `json:"error,omitempty"`
}

// SessionWS handles GET /api/sessions/{id}/ws. Each client message is one
// input event; replies are written in order on the same connection.
func (h *Handler) SessionWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", slog.String("id", id), slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		var reply wsMessage
		switch msg.Type {
		case wsKeystroke:
			req := completion.KeystrokeRequest{Line: msg.Line}
			if msg.Cursor != nil {
				req.Cursor = *msg.Cursor
			}
			upd, err := h.svc.Keystroke(r.Context(), id, req)
			if err != nil {
				reply = errMessage(err)
				break
			}
			reply = wsMessage{Type: wsUpdate, Update: upd}
		case wsSelect:
			ins, err := h.svc.Select(id, msg.Index)
			if err != nil {
				reply = errMessage(err)
				break
			}
			reply = wsMessage{Type: wsInsert, Insertion: ins}
		case wsClose:
			if err := h.svc.CloseSession(id); err != nil {
				reply = errMessage(err)
				break
			}
			_ = conn.WriteJSON(wsMessage{Type: wsClosed})
			return
		default:
			reply = wsMessage{Type: wsError, Error: "unknown message type"}
		}

		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}

func errMessage(err error) wsMessage {
	_, msg := errStatus(err)
	return wsMessage{Type: wsError, Error: msg}
}
