package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/IstiaqueAhmd/fitness-agent/internal/agent"
	"github.com/IstiaqueAhmd/fitness-agent/internal/domain"
	"github.com/IstiaqueAhmd/fitness-agent/internal/llm"
)

// llmCallTimeout is the maximum duration for one chat exchange, including
// tool execution and the final model call.
const llmCallTimeout = 5 * time.Minute

// maxHistoryTurns caps how many stored messages are replayed into each
// completion. Full history stays in the store and remains available via the
// history endpoint.
const maxHistoryTurns = 10

// registerRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/chat", s.requireAuth(s.handleChat))
	mux.HandleFunc("GET /api/users/{userID}/plans", s.requireAuth(s.handleUserPlans))
	mux.HandleFunc("GET /api/sessions/{sessionID}/history", s.requireAuth(s.handleSessionHistory))

	// Catch-all for unknown routes
	mux.HandleFunc("/", handleNotFound)
}

// requireAuth rejects requests that fail bearer-token auth. A server with
// no token configured runs open.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.auth.authorize(r) {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"version":       s.version,
		"uptimeSeconds": int(time.Since(s.startedAt).Seconds()),
	})
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

type chatResponse struct {
	Response  string    `json:"response"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		writeError(w, http.StatusServiceUnavailable, "no LLM provider configured")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.UserID == "" {
		req.UserID = "anonymous"
	}

	ctx, cancel := context.WithTimeout(r.Context(), llmCallTimeout)
	defer cancel()

	session, err := s.sessions.GetOrCreate(ctx, req.SessionID, req.UserID)
	if err != nil {
		s.log.Error().Err(err).Msg("session lookup failed")
		writeError(w, http.StatusInternalServerError, "session storage error")
		return
	}

	history, err := s.sessions.History(ctx, session.ID)
	if err != nil {
		s.log.Error().Err(err).Msg("history lookup failed")
		writeError(w, http.StatusInternalServerError, "session storage error")
		return
	}

	result := s.orchestrator.Respond(ctx, req.Message, toModelMessages(history), agent.TrustedContext{
		UserID:    req.UserID,
		SessionID: session.ID,
	})

	now := time.Now()
	s.appendMessage(ctx, session.ID, domain.Message{Role: llm.RoleUser, Content: req.Message, Timestamp: now})
	s.appendMessage(ctx, session.ID, domain.Message{Role: llm.RoleAssistant, Content: result.Response, Timestamp: time.Now()})

	writeJSON(w, http.StatusOK, chatResponse{
		Response:  result.Response,
		SessionID: session.ID,
		Timestamp: now,
	})
}

// appendMessage records a message, logging rather than failing the request
// on storage errors; the user already has their reply.
func (s *Server) appendMessage(ctx context.Context, sessionID string, msg domain.Message) {
	if err := s.sessions.Append(ctx, sessionID, msg); err != nil {
		s.log.Error().Err(err).Str("sessionId", sessionID).Msg("failed to record message")
	}
}

// toModelMessages converts stored history to model turns, keeping only the
// most recent maxHistoryTurns messages. Stored messages carry only role and
// content; tool turns are never persisted.
func toModelMessages(history []domain.Message) []llm.Message {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	out := make([]llm.Message, 0, len(history))
	for _, m := range history {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

func (s *Server) handleUserPlans(w http.ResponseWriter, r *http.Request) {
	if s.plans == nil {
		writeError(w, http.StatusServiceUnavailable, "plan storage not configured")
		return
	}

	userID := r.PathValue("userID")
	plans, err := s.plans.ListByUser(r.Context(), userID)
	if err != nil {
		s.log.Error().Err(err).Str("userId", userID).Msg("plan listing failed")
		writeError(w, http.StatusInternalServerError, "plan storage error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

func (s *Server) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	history, err := s.sessions.History(r.Context(), sessionID)
	if err != nil {
		s.log.Error().Err(err).Str("sessionId", sessionID).Msg("history lookup failed")
		writeError(w, http.StatusInternalServerError, "session storage error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"messages":   history,
	})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
