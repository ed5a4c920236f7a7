package ws

import (
	"context"
	"errors"
	"testing"
	"time"

	"accordion/internal/content"
	"accordion/internal/models"
)

type mockWS struct {
	readCh      chan models.ClientMessage
	writeCh     chan any
	closeCh     chan struct{}
	closed      bool
	errToReturn error
}

func newMockWS() *mockWS {
	return &mockWS{
		readCh:  make(chan models.ClientMessage, 10),
		writeCh: make(chan any, 10),
		closeCh: make(chan struct{}),
	}
}

func (m *mockWS) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.closeCh)
	return nil
}

func (m *mockWS) WriteJSON(v any) error {
	if m.errToReturn != nil {
		return m.errToReturn
	}
	m.writeCh <- v
	return nil
}

func (m *mockWS) ReadJSON(v any) error {
	if m.errToReturn != nil {
		return m.errToReturn
	}
	select {
	case msg, ok := <-m.readCh:
		if !ok {
			return errors.New("closed")
		}
		if ptr, ok := v.(*models.ClientMessage); ok {
			*ptr = msg
		}
		return nil
	case <-m.closeCh:
		return errors.New("connection closed")
	}
}

type mockHub struct {
	joinCh  chan string
	leaveCh chan string
	// per connection channel
	connChans map[string]chan models.ServerMessage
}

func newMockHub() *mockHub {
	return &mockHub{
		joinCh:    make(chan string, 10),
		leaveCh:   make(chan string, 10),
		connChans: make(map[string]chan models.ServerMessage),
	}
}

func (m *mockHub) Join(connID string) chan models.ServerMessage {
	m.joinCh <- connID
	ch := make(chan models.ServerMessage, 10)
	m.connChans[connID] = ch
	return ch
}

func (m *mockHub) Leave(connID string) {
	m.leaveCh <- connID
	if ch, ok := m.connChans[connID]; ok {
		close(ch)
		delete(m.connChans, connID)
	}
}

type stubPreviewer struct{}

func (stubPreviewer) Preview(text, format string) content.Report {
	return content.Report{HTML: "<p>" + text + "</p>", Warnings: []string{format}}
}

func receiveServerMessage(t *testing.T, ws *mockWS) models.ServerMessage {
	t.Helper()
	select {
	case received := <-ws.writeCh:
		msg, ok := received.(models.ServerMessage)
		if !ok {
			t.Fatalf("WS received wrong type: %T", received)
		}
		return msg
	case <-time.After(1 * time.Second):
		t.Fatal("WS did not receive a message")
	}
	return models.ServerMessage{}
}

func TestConnection_Lifecycle(t *testing.T) {
	hub := newMockHub()
	ws := newMockWS()
	connID := "conn1"

	conn := NewConnection(hub, stubPreviewer{}, ws, connID)
	if conn == nil {
		t.Fatal("NewConnection returned nil")
	}

	select {
	case id := <-hub.joinCh:
		if id != connID {
			t.Errorf("Expected Join with %s, got %s", connID, id)
		}
	default:
		t.Error("Join not called on NewConnection")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error)
	go func() {
		done <- conn.Handle(ctx)
	}()

	// 1. Preview request gets a report back with the same request ID
	ws.readCh <- models.ClientMessage{
		Type:      models.ClientMessageTypePreview,
		RequestID: "r1",
		Content:   "hello",
		Format:    "markdown",
	}

	msg := receiveServerMessage(t, ws)
	if msg.Type != models.ServerMessageTypePreview || msg.RequestID != "r1" {
		t.Errorf("unexpected preview response: %+v", msg)
	}
	if msg.Report == nil || msg.Report.HTML != "<p>hello</p>" || msg.Report.Warnings[0] != "markdown" {
		t.Errorf("unexpected report: %+v", msg.Report)
	}

	// 2. Hub notifications are forwarded
	hub.connChans[connID] <- models.ServerMessage{
		Type:    models.ServerMessageTypeEntryDeleted,
		EntryID: "e1",
	}

	msg = receiveServerMessage(t, ws)
	if msg.Type != models.ServerMessageTypeEntryDeleted || msg.EntryID != "e1" {
		t.Errorf("WS received wrong content: %+v", msg)
	}

	// 3. Stop
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Handle returned error: %v", err)
		}
	case <-time.After(1 * time.Second):
		t.Error("Handle did not return after cancel")
	}

	select {
	case id := <-hub.leaveCh:
		if id != connID {
			t.Errorf("Expected Leave with %s, got %s", connID, id)
		}
	default:
		t.Error("Leave not called")
	}

	if !ws.closed {
		t.Error("WS Close not called")
	}
}

func TestConnection_UnknownType(t *testing.T) {
	hub := newMockHub()
	ws := newMockWS()

	conn := NewConnection(hub, stubPreviewer{}, ws, "conn3")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error)
	go func() {
		done <- conn.Handle(ctx)
	}()

	ws.readCh <- models.ClientMessage{Type: "shout", RequestID: "r9"}

	msg := receiveServerMessage(t, ws)
	if msg.Type != models.ServerMessageTypeError || msg.RequestID != "r9" || msg.Message == "" {
		t.Errorf("expected error reply, got %+v", msg)
	}

	cancel()
	<-done
}

func TestConnection_WSError(t *testing.T) {
	hub := newMockHub()
	ws := newMockWS()

	conn := NewConnection(hub, stubPreviewer{}, ws, "conn2")

	// Simulate ReadJSON error immediately
	ws.errToReturn = errors.New("read error")

	done := make(chan error)
	go func() {
		done <- conn.Handle(context.Background())
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Expected error from Handle, got nil")
		}
	case <-time.After(1 * time.Second):
		t.Error("Handle did not return on error")
	}

	if !ws.closed {
		t.Error("WS Close not called")
	}
}
