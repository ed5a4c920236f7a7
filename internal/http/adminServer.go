package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"accordion/internal/api"
	"accordion/internal/auth"
	"accordion/internal/ws"
)

type AdminServer struct {
	server *http.Server
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewAdminServer serves authoring endpoints. Every route requires admin
// credentials.
func NewAdminServer(authenticator *auth.Authenticator, apiHandlers *api.API, live *ws.Server, addr string, logger *slog.Logger) *AdminServer {
	mux := http.NewServeMux()
	admin := authenticator.RequireAdmin

	mux.HandleFunc("POST /admin/faqs", admin(apiHandlers.CreateHandler))
	mux.HandleFunc("PUT /admin/faqs/{id}", admin(apiHandlers.UpdateHandler))
	mux.HandleFunc("DELETE /admin/faqs/{id}", admin(apiHandlers.DeleteHandler))
	mux.HandleFunc("POST /admin/faqs/reorder", admin(apiHandlers.ReorderHandler))
	mux.HandleFunc("POST /admin/preview", admin(apiHandlers.PreviewHandler))
	mux.HandleFunc("POST /admin/images", admin(apiHandlers.UploadImageHandler))

	// WebSocket endpoint
	mux.HandleFunc("GET /admin/live", admin(live.HandleConnections))

	if addr == "" {
		addr = "localhost:8081"
	}

	return &AdminServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (s *AdminServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *AdminServer) Start() error {
	s.logger.Info("Admin API started", "addr", s.server.Addr)
	s.wg.Add(1)
	defer s.wg.Done()

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *AdminServer) Shutdown(ctx context.Context) error {
	defer s.wg.Wait()
	return s.server.Shutdown(ctx)
}
