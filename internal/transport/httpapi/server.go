package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sandevgo/rolecast/pkg/log"
)

// Server exposes the OpenAI-shaped surface. It satisfies srv.Service so
// the cmd layer can manage its lifecycle next to the other services.
type Server struct {
	srv *http.Server
}

func NewServer(handler *Handler, addr string) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(corsMiddleware())

	r.Get("/health", handler.Health)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/models", handler.Models)
		r.Post("/chat/completions", handler.Completions)
	})

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	// Propagate the app context so handlers inherit the logger and die
	// with the process.
	s.srv.BaseContext = func(_ net.Listener) context.Context { return ctx }

	log.FromCtx(ctx).Info().Str("addr", s.srv.Addr).Msg("http server listening")
	if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

// corsMiddleware answers preflights and opens the surface to browser
// frontends. The relay carries no credentials of its own, so a wildcard
// origin is safe.
func corsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Conversation-Id")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
