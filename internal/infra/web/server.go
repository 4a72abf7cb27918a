package web

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-broadcast-bot/internal/config"
	"telegram-broadcast-bot/internal/usecase"
)

// Server exposes the operator API: session exchange, registry stats and
// the raw recipient list. Everything under /api/v1 except the session
// endpoint requires either the API key or a minted session.
type Server struct {
	userUC      usecase.UserUseCase
	broadcastUC usecase.BroadcastUseCase
	settings    *config.Settings
	auth        *AuthManager
	apiKey      string
	log         *zerolog.Logger
}

func NewServer(
	userUC usecase.UserUseCase,
	broadcastUC usecase.BroadcastUseCase,
	settings *config.Settings,
	auth *AuthManager,
	apiKey string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		userUC:      userUC,
		broadcastUC: broadcastUC,
		settings:    settings,
		auth:        auth,
		apiKey:      apiKey,
		log:         logger,
	}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/session", s.sessionCreateHandler())
		r.Delete("/session", s.sessionDeleteHandler())

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/stats", s.statsHandler())
			r.Get("/users", s.usersHandler())
		})
	})
	return r
}

// Serve runs the HTTP server until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// authMiddleware accepts the raw API key as a bearer token or a session
// cookie minted by the session endpoint.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("operator API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		if bearerMatches(r, s.apiKey) {
			next.ServeHTTP(w, r)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err == nil {
			next.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}

func bearerMatches(r *http.Request, key string) bool {
	hdr := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(hdr, prefix) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(hdr[len(prefix):]), []byte(key)) == 1
}
