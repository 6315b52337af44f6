package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/IstiaqueAhmd/fitness-agent/internal/agent"
	"github.com/IstiaqueAhmd/fitness-agent/internal/config"
	"github.com/IstiaqueAhmd/fitness-agent/internal/domain"
	"github.com/IstiaqueAhmd/fitness-agent/internal/llm"
	"github.com/IstiaqueAhmd/fitness-agent/internal/logging"
	"github.com/IstiaqueAhmd/fitness-agent/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLog() *logging.Logger {
	return logging.New(nil, "silent", "pretty")
}

func testOrchestrator(client llm.Client, plans agent.PlanStore) *agent.Orchestrator {
	reg := agent.NewToolRegistry()
	reg.Register(&agent.WorkoutTool{})
	reg.Register(&agent.NutritionTool{})
	reg.Register(&agent.SavePlanTool{Store: plans})
	reg.Register(&agent.ListPlansTool{Store: plans})
	return agent.NewOrchestratorWithClient(
		agent.OrchestratorConfig{AgentName: "FitBot", Model: "gpt-4o-mini"},
		client,
		reg,
		agent.NewDispatcher(reg, testLog()),
		testLog(),
	)
}

// newTestServer builds the full handler chain without opening a listener.
func newTestServer(t *testing.T, cfg config.ServerConfig, sessions SessionStore, opts ...ServerOption) *httptest.Server {
	t.Helper()
	s := New(cfg, sessions, testLog(), opts...)
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	srv := httptest.NewServer(withMiddleware(mux, s.log, cfg.AllowedOrigins))
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, config.ServerConfig{}, store.NewMemorySessionStore())

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestChat_NoOrchestrator(t *testing.T) {
	srv := newTestServer(t, config.ServerConfig{}, store.NewMemorySessionStore())

	resp, err := http.Post(srv.URL+"/api/chat", "application/json",
		strings.NewReader(`{"message":"hello"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestChat_MissingMessage(t *testing.T) {
	orch := testOrchestrator(&llm.MockClient{}, store.NewMemoryPlanStore())
	srv := newTestServer(t, config.ServerConfig{}, store.NewMemorySessionStore(), WithOrchestrator(orch))

	resp, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChat_RoundTrip(t *testing.T) {
	client := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Content: "Welcome to FitBot!", Model: "gpt-4o-mini"}, nil
		},
	}
	sessions := store.NewMemorySessionStore()
	orch := testOrchestrator(client, store.NewMemoryPlanStore())
	srv := newTestServer(t, config.ServerConfig{}, sessions, WithOrchestrator(orch))

	resp, err := http.Post(srv.URL+"/api/chat", "application/json",
		strings.NewReader(`{"message":"hi there","user_id":"alice"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body chatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Welcome to FitBot!", body.Response)
	assert.NotEmpty(t, body.SessionID)

	// Both turns are recorded.
	history, err := sessions.History(context.Background(), body.SessionID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "hi there", history[0].Content)
	assert.Equal(t, "assistant", history[1].Role)
}

func TestChat_ReusesSession(t *testing.T) {
	var sawHistory int
	client := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			// system + history + current message
			sawHistory = len(req.Messages) - 2
			return &llm.CompletionResponse{Content: "ok"}, nil
		},
	}
	sessions := store.NewMemorySessionStore()
	orch := testOrchestrator(client, store.NewMemoryPlanStore())
	srv := newTestServer(t, config.ServerConfig{}, sessions, WithOrchestrator(orch))

	first, err := http.Post(srv.URL+"/api/chat", "application/json",
		strings.NewReader(`{"message":"first","user_id":"alice"}`))
	require.NoError(t, err)
	var body chatResponse
	require.NoError(t, json.NewDecoder(first.Body).Decode(&body))
	first.Body.Close()

	second, err := http.Post(srv.URL+"/api/chat", "application/json",
		strings.NewReader(`{"message":"second","user_id":"alice","session_id":"`+body.SessionID+`"}`))
	require.NoError(t, err)
	var body2 chatResponse
	require.NoError(t, json.NewDecoder(second.Body).Decode(&body2))
	second.Body.Close()

	assert.Equal(t, body.SessionID, body2.SessionID)
	assert.Equal(t, 2, sawHistory, "second request must include the first exchange")
}

func TestUserPlans(t *testing.T) {
	plans := store.NewMemoryPlanStore()
	_, err := plans.Save(context.Background(), "alice", "",
		json.RawMessage(`{"plan_name":"Plan A","goals":"weight loss"}`), domain.PlanTypeWorkout)
	require.NoError(t, err)

	srv := newTestServer(t, config.ServerConfig{}, store.NewMemorySessionStore(), WithPlans(plans))

	resp, err := http.Get(srv.URL + "/api/users/alice/plans")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Plans []domain.FitnessPlan `json:"plans"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Plans, 1)
	assert.Equal(t, "Plan A", body.Plans[0].PlanName)
}

func TestSessionHistory(t *testing.T) {
	sessions := store.NewMemorySessionStore()
	sess, err := sessions.GetOrCreate(context.Background(), "", "alice")
	require.NoError(t, err)
	require.NoError(t, sessions.Append(context.Background(), sess.ID, domain.Message{Role: "user", Content: "hi"}))

	srv := newTestServer(t, config.ServerConfig{}, sessions)

	resp, err := http.Get(srv.URL + "/api/sessions/" + sess.ID + "/history")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		SessionID string           `json:"session_id"`
		Messages  []domain.Message `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, sess.ID, body.SessionID)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "hi", body.Messages[0].Content)
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, config.ServerConfig{}, store.NewMemorySessionStore())

	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// --- Auth tests ---

func TestAuth_TokenRequired(t *testing.T) {
	cfg := config.ServerConfig{Auth: config.ServerAuth{Token: "secret"}}
	srv := newTestServer(t, cfg, store.NewMemorySessionStore())

	resp, err := http.Post(srv.URL+"/api/chat", "application/json",
		strings.NewReader(`{"message":"hi"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/chat", strings.NewReader(`{"message":"hi"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	// Authorized but no orchestrator configured.
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAuth_HealthAlwaysOpen(t *testing.T) {
	cfg := config.ServerConfig{Auth: config.ServerAuth{Token: "secret"}}
	srv := newTestServer(t, cfg, store.NewMemorySessionStore())

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestToModelMessages_CapsHistory(t *testing.T) {
	var history []domain.Message
	for i := 0; i < 24; i++ {
		role := llm.RoleUser
		if i%2 == 1 {
			role = llm.RoleAssistant
		}
		history = append(history, domain.Message{Role: role, Content: "turn"})
	}

	msgs := toModelMessages(history)
	require.Len(t, msgs, maxHistoryTurns)
	// The newest turns survive; history ends on an assistant reply.
	assert.Equal(t, llm.RoleAssistant, msgs[len(msgs)-1].Role)

	short := toModelMessages(history[:3])
	assert.Len(t, short, 3)
}

func TestSafeEqual(t *testing.T) {
	assert.True(t, safeEqual("token", "token"))
	assert.False(t, safeEqual("token", "other"))
	assert.False(t, safeEqual("token", "token2"))
	assert.True(t, safeEqual("", ""))
}

func TestResolveAuth(t *testing.T) {
	auth := ResolveAuth(config.ServerAuth{Token: "abc"})
	assert.Equal(t, "token", auth.Mode)

	auth = ResolveAuth(config.ServerAuth{})
	assert.Equal(t, "open", auth.Mode)
}

func TestResolveBindAddr(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8080", resolveBindAddr(config.ServerConfig{Bind: "loopback", Port: 8080}))
	assert.Equal(t, "0.0.0.0:8080", resolveBindAddr(config.ServerConfig{Bind: "lan", Port: 8080}))
	assert.Equal(t, "10.0.0.5:9000", resolveBindAddr(config.ServerConfig{Bind: "custom", CustomBindHost: "10.0.0.5", Port: 9000}))
	assert.Equal(t, "127.0.0.1:8080", resolveBindAddr(config.ServerConfig{Bind: "", Port: 8080}))
}

func TestCORS_Preflight(t *testing.T) {
	cfg := config.ServerConfig{AllowedOrigins: []string{"https://app.example.com"}}
	srv := newTestServer(t, cfg, store.NewMemorySessionStore())

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/chat", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	srv := newTestServer(t, config.ServerConfig{}, store.NewMemorySessionStore())

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://evil.example.com")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
