package ws

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"accordion/internal/models"

	"github.com/gorilla/websocket"
)

func dialTestServer(t *testing.T) *websocket.Conn {
	t.Helper()
	s := NewServer(NewHub(slog.New(slog.DiscardHandler)), stubPreviewer{}, slog.New(slog.DiscardHandler))
	srv := httptest.NewServer(http.HandlerFunc(s.HandleConnections))
	t.Cleanup(srv.Close)

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestServer_Preview(t *testing.T) {
	conn := dialTestServer(t)

	if err := conn.WriteJSON(models.ClientMessage{Type: models.ClientMessageTypePreview, RequestID: "a", Content: "hi"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg models.ServerMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if msg.RequestID != "a" || msg.Report == nil || msg.Report.HTML != "<p>hi</p>" {
		t.Errorf("unexpected reply: %+v", msg)
	}
}

func TestServer_ReadLimit(t *testing.T) {
	conn := dialTestServer(t)

	oversized := models.ClientMessage{
		Type:    models.ClientMessageTypePreview,
		Content: strings.Repeat("a", maxMessageSize+1),
	}
	// The server may drop the connection before the whole frame is written.
	if err := conn.WriteJSON(oversized); err != nil {
		return
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg models.ServerMessage
	if err := conn.ReadJSON(&msg); err == nil {
		t.Fatalf("expected the server to close the connection, got reply %+v", msg)
	}
}
