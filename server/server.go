package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Server wraps the HTTP listener serving the chat endpoints.
type Server struct {
	httpServer *http.Server
	log        *slog.Logger
}

func New(log *slog.Logger, address string, handler http.Handler) *Server {
	return &Server{
		log: log,
		httpServer: &http.Server{
			Addr:              address,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start blocks serving requests until Shutdown is called or the listener
// fails. Live WebSocket connections keep their handlers running; there is
// no idle timeout on the server, the ping/pong deadlines police liveness.
func (s *Server) Start() error {
	s.log.Info("http server listening", "address", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
