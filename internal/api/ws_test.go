package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/starford/annotator/internal/annotation"
	"github.com/starford/annotator/internal/testutil"
)

func dialSession(t *testing.T, env *testEnv, id string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + id + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg wsMessage) wsMessage {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
	var reply wsMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	return reply
}

func TestSessionWS_TypeSelectClose(t *testing.T) {
	env := newTestEnv(t, "", nil)
	testutil.WriteDoc(t, env.vault, "list.md", testutil.TaskDoc)
	id := env.svc.OpenSession("list.md").ID
	conn := dialSession(t, env, id)

	var reply wsMessage
	for _, line := range []string{";", ";;", ";;task.eggs"} {
		reply = roundTrip(t, conn, wsMessage{
			Type:   wsKeystroke,
			Line:   line,
			Cursor: &annotation.Position{Line: 10, Ch: len(line)},
		})
		if reply.Type != wsUpdate {
			t.Fatalf("%q: reply = %+v", line, reply)
		}
	}
	if reply.Update.State != "filtering" || len(reply.Update.Candidates) != 1 {
		t.Fatalf("update = %+v", reply.Update)
	}

	reply = roundTrip(t, conn, wsMessage{Type: wsSelect, Index: 0})
	if reply.Type != wsInsert || reply.Insertion.Text != "- task::eggs" {
		t.Fatalf("reply = %+v", reply)
	}

	reply = roundTrip(t, conn, wsMessage{Type: wsClose})
	if reply.Type != wsClosed {
		t.Errorf("reply = %+v", reply)
	}
	if len(env.svc.Sessions()) != 0 {
		t.Error("session still registered after close")
	}
}

func TestSessionWS_Errors(t *testing.T) {
	env := newTestEnv(t, "", nil)
	conn := dialSession(t, env, "missing")

	reply := roundTrip(t, conn, wsMessage{Type: wsKeystroke, Line: ";;"})
	if reply.Type != wsError || reply.Error != "session not found" {
		t.Errorf("reply = %+v", reply)
	}
	reply = roundTrip(t, conn, wsMessage{Type: "resize"})
	if reply.Type != wsError {
		t.Errorf("reply = %+v", reply)
	}
}
