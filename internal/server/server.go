// Package server exposes the game engine and player registry over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/player"
	"golang.org/x/sync/errgroup"
)

// Games is the part of game.Engine the server calls
type Games interface {
	Create(ctx context.Context, playerName string) (game.View, error)
	Hit(ctx context.Context, id string) (game.View, error)
	Stand(ctx context.Context, id string) (game.View, error)
	Get(ctx context.Context, id string) (game.View, error)
	List(ctx context.Context) ([]game.View, error)
	Delete(ctx context.Context, id string) error
}

// Players is the part of player.Service the server calls
type Players interface {
	Register(ctx context.Context, name string) (*player.Player, error)
	ByID(ctx context.Context, id string) (*player.Player, error)
	ByName(ctx context.Context, name string) (*player.Player, error)
	List(ctx context.Context) ([]*player.Player, error)
	Ranking(ctx context.Context) ([]player.Standing, error)
	Rename(ctx context.Context, id, newName string) (*player.Player, error)
	Delete(ctx context.Context, id string) error
}

// shutdownTimeout bounds how long in-flight requests get after the run
// context is cancelled
const shutdownTimeout = 5 * time.Second

// Server is the HTTP API
type Server struct {
	games        Games
	players      Players
	logger       *log.Logger
	addr         string
	readTimeout  time.Duration
	writeTimeout time.Duration
	httpServer   *http.Server
}

// Option configures a Server
type Option func(*Server)

// WithAddress sets the listen address
func WithAddress(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

// WithTimeouts sets the HTTP read and write timeouts
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) {
		s.readTimeout = read
		s.writeTimeout = write
	}
}

// NewServer creates a server
func NewServer(games Games, players Players, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		games:        games,
		players:      players,
		logger:       logger.WithPrefix("server"),
		addr:         "localhost:8080",
		readTimeout:  5 * time.Second,
		writeTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}
	return s
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /game/new", s.handleCreateGame)
	mux.HandleFunc("GET /game/details/{id}", s.handleGetGame)
	mux.HandleFunc("GET /game/all", s.handleListGames)
	mux.HandleFunc("DELETE /game/delete/{id}", s.handleDeleteGame)
	mux.HandleFunc("POST /game/{id}/hit", s.handleHit)
	mux.HandleFunc("POST /game/{id}/stand", s.handleStand)

	mux.HandleFunc("POST /player/register", s.handleRegisterPlayer)
	mux.HandleFunc("GET /player/id/{id}", s.handlePlayerByID)
	mux.HandleFunc("GET /player/name/{name}", s.handlePlayerByName)
	mux.HandleFunc("GET /player/all", s.handleListPlayers)
	mux.HandleFunc("GET /player/ranking", s.handleRanking)
	mux.HandleFunc("PUT /player/{id}", s.handleRenamePlayer)
	mux.HandleFunc("DELETE /player/delete/{id}", s.handleDeletePlayer)

	mux.HandleFunc("GET /health", s.handleHealth)

	return s.logRequests(mux)
}

// Serve accepts connections on l until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Starting HTTP server", "addr", l.Addr().String())
		if err := s.httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// ListenAndServe listens on the configured address and calls Serve
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, l)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
