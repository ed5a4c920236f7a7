package ws

import (
	"log/slog"
	"net/http"

	"accordion/internal/faq"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// maxMessageSize bounds one client frame: a full answer with JSON escaping
// room for quotes and newlines, plus the envelope.
const maxMessageSize = 2*faq.MaxAnswerBytes + 4096

type Server struct {
	hub       *Hub
	previewer previewer
	upgrader  *websocket.Upgrader
	logger    *slog.Logger
}

func NewServer(hub *Hub, previewer previewer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		hub:       hub,
		previewer: previewer,
		logger:    logger,
		upgrader: &websocket.Upgrader{
			// Served on the admin listener only, behind basic auth.
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleConnections upgrades an authenticated admin request to a live
// preview and notification socket.
func (s *Server) HandleConnections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("error upgrading to websocket", "error", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)

	connID := uuid.NewString()
	s.logger.Debug("live client connected", "connection", connID)

	if err := NewConnection(s.hub, s.previewer, conn, connID).Handle(r.Context()); err != nil {
		s.logger.Debug("live client disconnected", "connection", connID, "error", err)
		return
	}
	s.logger.Debug("live client disconnected", "connection", connID)
}
