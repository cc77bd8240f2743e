// Package server exposes the scoring engine over HTTP.
//
// Every response is a JSON api.Envelope. Each mutating route performs one
// engine operation and answers with the complete post-mutation snapshot, so
// a client never has to merge partial state. Live viewers either poll
// GET /api/matches/{id}/live (which carries the snapshot version as its
// ETag) or hold a websocket on /api/matches/{id}/stream.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/roach88/crease/internal/api"
	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/feed"
)

// Server routes HTTP requests to an engine.
type Server struct {
	eng      *engine.Engine
	hub      *feed.Hub
	logger   *slog.Logger
	token    string
	upgrader websocket.Upgrader
	router   *mux.Router

	// subscribed, when set, runs after a stream subscribes and before it
	// reads the opening snapshot.
	subscribed func(matchID string)
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithHub enables the websocket stream. The same hub must be among the
// engine's publishers for streams to receive anything.
func WithHub(h *feed.Hub) Option {
	return func(s *Server) {
		s.hub = h
	}
}

// WithToken requires "Authorization: Bearer <token>" on mutating requests.
// An empty token disables the check.
func WithToken(token string) Option {
	return func(s *Server) {
		s.token = token
	}
}

// New creates a Server for eng.
func New(eng *engine.Engine, opts ...Option) *Server {
	s := &Server{
		eng:    eng,
		logger: slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.Use(s.requireToken)

	r.HandleFunc(api.PathHealth, s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc(api.PathFormats, s.handleFormats).Methods(http.MethodGet)

	r.HandleFunc(api.PathTeams, s.handleListTeams).Methods(http.MethodGet)
	r.HandleFunc(api.PathTeams, s.handleCreateTeam).Methods(http.MethodPost)
	r.HandleFunc(api.RouteTeam, s.handleDeleteTeam).Methods(http.MethodDelete)

	r.HandleFunc(api.PathMatches, s.handleListMatches).Methods(http.MethodGet)
	r.HandleFunc(api.PathMatches, s.handleCreateMatch).Methods(http.MethodPost)
	r.HandleFunc(api.RouteMatch, s.handleDeleteMatch).Methods(http.MethodDelete)
	r.HandleFunc(api.RouteLive, s.handleLive).Methods(http.MethodGet)
	r.HandleFunc(api.RouteStream, s.handleStream).Methods(http.MethodGet)
	r.HandleFunc(api.RouteUndo, s.handleUndo).Methods(http.MethodPost)
	r.HandleFunc(api.RouteAbandon, s.handleAbandon).Methods(http.MethodPost)

	r.HandleFunc(api.PathInnings, s.handleStartInnings).Methods(http.MethodPost)
	r.HandleFunc(api.RouteDeliveries, s.handleRecordDelivery).Methods(http.MethodPost)
	r.HandleFunc(api.RouteRoles, s.handleAssignRole).Methods(http.MethodPut)
	r.HandleFunc(api.RouteEndInnings, s.handleEndInnings).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, api.ErrorBody{Code: string(engine.CodeNotFound), Message: "no such route"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, api.ErrorBody{Code: api.CodeBadRequest, Message: "method not allowed"})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack passes the connection through for websocket upgrades.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" || r.Method == http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || got != s.token {
			writeError(w, http.StatusUnauthorized, api.ErrorBody{
				Code:    api.CodeUnauthorized,
				Message: "missing or invalid session token",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
