package ws

import (
	"log/slog"
	"sync"

	"accordion/internal/models"
)

const connectionBuffer = 100

// Hub fans out change notifications to every connected authoring client.
type Hub struct {
	// Map of connectionID -> outgoing channel
	connections map[string]chan models.ServerMessage

	logger *slog.Logger
	mu     sync.RWMutex
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		connections: make(map[string]chan models.ServerMessage),
		logger:      logger,
	}
}

func (h *Hub) Join(connID string) chan models.ServerMessage {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.connections[connID]; ok {
		return ch
	}

	ch := make(chan models.ServerMessage, connectionBuffer)
	h.connections[connID] = ch
	return ch
}

func (h *Hub) Leave(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.connections[connID]; ok {
		close(ch)
		delete(h.connections, connID)
	}
}

// Broadcast queues msg for every connection. Slow clients whose buffer is full
// miss the message rather than stalling writers.
func (h *Hub) Broadcast(msg models.ServerMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.connections {
		select {
		case ch <- msg:
		default:
			h.logger.Warn("dropping message for slow client", "connection", id, "type", msg.Type)
		}
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}
