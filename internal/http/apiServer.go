package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"accordion/internal/api"
)

type APIServer struct {
	server *http.Server
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewAPIServer serves the public, read-only side: rendered entries and
// uploaded images.
func NewAPIServer(apiHandlers *api.API, addr string, logger *slog.Logger) *APIServer {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/faqs", apiHandlers.ListHandler)
	mux.HandleFunc("GET /api/faqs/{id}", apiHandlers.GetHandler)
	mux.HandleFunc("GET /api/images/{id}", apiHandlers.GetImageHandler)

	if addr == "" {
		addr = ":8080"
	}

	return &APIServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *APIServer) Start() error {
	s.logger.Info("API server started", "addr", s.server.Addr)
	s.wg.Add(1)
	defer s.wg.Done()

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *APIServer) Shutdown(ctx context.Context) error {
	defer s.wg.Wait()
	return s.server.Shutdown(ctx)
}
