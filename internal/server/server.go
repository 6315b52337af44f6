package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/IstiaqueAhmd/fitness-agent/internal/agent"
	"github.com/IstiaqueAhmd/fitness-agent/internal/config"
	"github.com/IstiaqueAhmd/fitness-agent/internal/domain"
	"github.com/IstiaqueAhmd/fitness-agent/internal/logging"
	"github.com/IstiaqueAhmd/fitness-agent/internal/version"
)

// SessionStore persists chat sessions and their messages. Satisfied by
// store.SessionStore and store.MemorySessionStore.
type SessionStore interface {
	GetOrCreate(ctx context.Context, sessionID, userID string) (*domain.Session, error)
	Append(ctx context.Context, sessionID string, msg domain.Message) error
	History(ctx context.Context, sessionID string) ([]domain.Message, error)
}

// PlanStore lists saved plans for the read API.
type PlanStore interface {
	ListByUser(ctx context.Context, userID string) ([]domain.FitnessPlan, error)
}

// Server is the fitness agent HTTP API server.
type Server struct {
	cfg      config.ServerConfig
	auth     ResolvedAuth
	log      *logging.Logger
	version  string
	sessions SessionStore
	plans    PlanStore

	// orchestrator is nil when no LLM provider is available; chat requests
	// then fail with 503.
	orchestrator *agent.Orchestrator

	startedAt  time.Time
	httpServer *http.Server
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithOrchestrator sets the conversation orchestrator for chat handling.
func WithOrchestrator(o *agent.Orchestrator) ServerOption {
	return func(s *Server) {
		s.orchestrator = o
	}
}

// WithPlans sets the plan store for the read API.
func WithPlans(p PlanStore) ServerOption {
	return func(s *Server) {
		s.plans = p
	}
}

// New creates a server over the given session store.
func New(cfg config.ServerConfig, sessions SessionStore, log *logging.Logger, opts ...ServerOption) *Server {
	s := &Server{
		cfg:      cfg,
		auth:     ResolveAuth(cfg.Auth),
		log:      log.Sub("server"),
		version:  version.Version,
		sessions: sessions,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// resolveBindAddr computes the listen address from config.
func resolveBindAddr(cfg config.ServerConfig) string {
	switch cfg.Bind {
	case "loopback":
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	case "lan":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	case "custom":
		host := cfg.CustomBindHost
		if host == "" {
			host = "0.0.0.0"
		}
		return fmt.Sprintf("%s:%d", host, cfg.Port)
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

// Start begins listening for HTTP connections.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg)

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	handler := withMiddleware(mux, s.log, s.cfg.AllowedOrigins)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(l net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.startedAt = time.Now()

	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("bind", s.cfg.Bind).
		Str("auth", s.auth.Mode).
		Msg("server ready")

	// Shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the server's listen address, or empty string if not started.
func (s *Server) Addr() string {
	if s.httpServer != nil {
		return s.httpServer.Addr
	}
	return ""
}
