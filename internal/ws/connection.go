package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"accordion/internal/content"
	"accordion/internal/models"
)

type wsConnection interface {
	Close() error
	WriteJSON(v interface{}) error
	ReadJSON(v interface{}) error
}

type messageHub interface {
	Join(connID string) chan models.ServerMessage
	Leave(connID string)
}

type previewer interface {
	Preview(text, format string) content.Report
}

type Connection struct {
	ws         wsConnection
	hub        messageHub
	previewer  previewer
	connID     string
	fromClient chan models.ClientMessage
	fromServer chan models.ServerMessage
	errorCh    chan error
}

func NewConnection(
	hub messageHub,
	previewer previewer,
	ws wsConnection,
	connID string,
) *Connection {
	return &Connection{
		ws:         ws,
		hub:        hub,
		previewer:  previewer,
		connID:     connID,
		fromClient: make(chan models.ClientMessage),
		fromServer: hub.Join(connID),
		errorCh:    make(chan error, 2),
	}
}

func (c *Connection) Handle(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		close(c.fromClient)
		close(c.errorCh)
		c.hub.Leave(c.connID)
	}()

	var wg sync.WaitGroup
	wg.Go(func() {
		c.errorCh <- c.pumpMessages(ctx)
		cancel()
	})

	wg.Go(func() {
		c.errorCh <- c.mainLoop(ctx)
		cancel()
	})

	var err error
	select {
	case err = <-c.errorCh:
	case <-ctx.Done():
	}
	c.ws.Close()
	wg.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

func (c *Connection) pumpMessages(ctx context.Context) error {
	for {
		var msg models.ClientMessage
		if err := c.ws.ReadJSON(&msg); err != nil {
			return err
		}
		select {
		case c.fromClient <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// mainLoop is the only writer to the socket.
func (c *Connection) mainLoop(ctx context.Context) error {
	for {
		select {
		case msg := <-c.fromClient:
			if err := c.ws.WriteJSON(c.processClientMessage(msg)); err != nil {
				return err
			}
		case msg, ok := <-c.fromServer:
			if !ok {
				return nil
			}
			if err := c.ws.WriteJSON(msg); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Connection) processClientMessage(msg models.ClientMessage) models.ServerMessage {
	switch msg.Type {
	case models.ClientMessageTypePreview:
		report := c.previewer.Preview(msg.Content, msg.Format)
		return models.ServerMessage{
			Type:      models.ServerMessageTypePreview,
			RequestID: msg.RequestID,
			Report:    &report,
		}
	default:
		return models.ServerMessage{
			Type:      models.ServerMessageTypeError,
			RequestID: msg.RequestID,
			Message:   fmt.Sprintf("unknown message type %q", msg.Type),
		}
	}
}
