package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IstiaqueAhmd/fitness-agent/internal/llm"
	"github.com/IstiaqueAhmd/fitness-agent/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fitnessToolRegistry(plans PlanStore) *ToolRegistry {
	reg := NewToolRegistry()
	reg.Register(&WorkoutTool{})
	reg.Register(&NutritionTool{})
	reg.Register(&SavePlanTool{Store: plans})
	reg.Register(&ListPlansTool{Store: plans})
	return reg
}

func newTestOrchestrator(client llm.Client, plans PlanStore) *Orchestrator {
	reg := fitnessToolRegistry(plans)
	return NewOrchestratorWithClient(
		OrchestratorConfig{AgentName: "FitBot", Model: "gpt-4o-mini", MaxTokens: 1000},
		client,
		reg,
		NewDispatcher(reg, testLog()),
		testLog(),
	)
}

func TestOrchestrator_PlainResponse(t *testing.T) {
	var sawTools bool
	client := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			sawTools = len(req.Tools) > 0
			require.NotEmpty(t, req.Messages)
			assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
			assert.Contains(t, req.Messages[0].Content, "FitBot")
			return &llm.CompletionResponse{Content: "Drink water and sleep well.", Model: "gpt-4o-mini"}, nil
		},
	}

	o := newTestOrchestrator(client, store.NewMemoryPlanStore())
	res := o.Respond(context.Background(), "any tips?", nil, TrustedContext{UserID: "alice"})

	assert.Equal(t, "Drink water and sleep well.", res.Response)
	assert.Zero(t, res.ToolCalls)
	assert.True(t, sawTools, "first call must advertise the tool catalogue")
}

func TestOrchestrator_ToolCallFlow(t *testing.T) {
	var calls int
	client := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			calls++
			if calls == 1 {
				return &llm.CompletionResponse{
					ToolCalls: []llm.ToolCall{{
						ID:        "call-1",
						Name:      "generate_workout_plan",
						Arguments: `{"goals":"weight loss","fitness_level":"beginner","available_days":4}`,
					}},
					Model: "gpt-4o-mini",
				}, nil
			}

			// Second call carries the tool result and no tool catalogue.
			assert.Empty(t, req.Tools)
			last := req.Messages[len(req.Messages)-1]
			assert.Equal(t, llm.RoleTool, last.Role)
			assert.Equal(t, "call-1", last.ToolCallID)
			assert.Contains(t, last.Content, "3-day full body")
			return &llm.CompletionResponse{Content: "Here is your beginner plan.", Model: "gpt-4o-mini"}, nil
		},
	}

	o := newTestOrchestrator(client, store.NewMemoryPlanStore())
	res := o.Respond(context.Background(), "make me a plan", nil, TrustedContext{UserID: "alice"})

	assert.Equal(t, 2, calls)
	assert.Equal(t, "Here is your beginner plan.", res.Response)
	assert.Equal(t, 1, res.ToolCalls)
}

func TestOrchestrator_SaveUsesTrustedUser(t *testing.T) {
	plans := store.NewMemoryPlanStore()

	var calls int
	client := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			calls++
			if calls == 1 {
				// The model tries to save on behalf of another user.
				return &llm.CompletionResponse{
					ToolCalls: []llm.ToolCall{{
						ID:        "call-1",
						Name:      "save_fitness_plan",
						Arguments: `{"user_id":"mallory","plan_type":"workout","plan_name":"My Plan","plan_data":{"goals":"weight loss"}}`,
					}},
				}, nil
			}
			return &llm.CompletionResponse{Content: "Saved your plan as My Plan."}, nil
		},
	}

	o := newTestOrchestrator(client, plans)
	res := o.Respond(context.Background(), "save it", nil, TrustedContext{UserID: "alice", SessionID: "sess-1"})

	assert.Equal(t, "Saved your plan as My Plan.", res.Response)

	saved, err := plans.ListByUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "My Plan", saved[0].PlanName)
	assert.Equal(t, "sess-1", saved[0].SessionID)

	others, err := plans.ListByUser(context.Background(), "mallory")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestOrchestrator_MalformedArgumentsContained(t *testing.T) {
	var calls int
	client := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			calls++
			if calls == 1 {
				return &llm.CompletionResponse{
					ToolCalls: []llm.ToolCall{{
						ID:        "call-1",
						Name:      "generate_workout_plan",
						Arguments: `{not json`,
					}},
				}, nil
			}

			last := req.Messages[len(req.Messages)-1]
			assert.Equal(t, llm.RoleTool, last.Role)
			var payload map[string]string
			require.NoError(t, json.Unmarshal([]byte(last.Content), &payload))
			assert.Contains(t, payload["error"], "invalid arguments")
			return &llm.CompletionResponse{Content: "I could not read that, let me retry."}, nil
		},
	}

	o := newTestOrchestrator(client, store.NewMemoryPlanStore())
	res := o.Respond(context.Background(), "plan please", nil, TrustedContext{UserID: "alice"})

	assert.Equal(t, 2, calls)
	assert.Equal(t, "I could not read that, let me retry.", res.Response)
}

func TestOrchestrator_UnknownToolContained(t *testing.T) {
	var calls int
	client := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			calls++
			if calls == 1 {
				return &llm.CompletionResponse{
					ToolCalls: []llm.ToolCall{{ID: "call-1", Name: "teleport", Arguments: `{}`}},
				}, nil
			}

			last := req.Messages[len(req.Messages)-1]
			assert.Contains(t, last.Content, "unknown tool: teleport")
			return &llm.CompletionResponse{Content: "That is not something I can do."}, nil
		},
	}

	o := newTestOrchestrator(client, store.NewMemoryPlanStore())
	res := o.Respond(context.Background(), "teleport me", nil, TrustedContext{UserID: "alice"})

	assert.Equal(t, "That is not something I can do.", res.Response)
}

func TestOrchestrator_ModelFailureApology(t *testing.T) {
	client := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return nil, errors.New("connection refused")
		},
	}

	o := newTestOrchestrator(client, store.NewMemoryPlanStore())
	res := o.Respond(context.Background(), "hello", nil, TrustedContext{UserID: "alice"})

	assert.Contains(t, res.Response, "Sorry, I encountered an error")
	assert.Contains(t, res.Response, "Please try again.")
}

func TestOrchestrator_FinalCallFailureApology(t *testing.T) {
	var calls int
	client := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			calls++
			if calls == 1 {
				return &llm.CompletionResponse{
					ToolCalls: []llm.ToolCall{{
						ID:        "call-1",
						Name:      "generate_workout_plan",
						Arguments: `{"goals":"weight loss","fitness_level":"beginner","available_days":4}`,
					}},
				}, nil
			}
			return nil, errors.New("timeout")
		},
	}

	o := newTestOrchestrator(client, store.NewMemoryPlanStore())
	res := o.Respond(context.Background(), "plan please", nil, TrustedContext{UserID: "alice"})

	assert.Contains(t, res.Response, "Sorry, I encountered an error")
}

func TestOrchestrator_HistoryIncluded(t *testing.T) {
	client := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			// system + 2 history turns + new user message
			require.Len(t, req.Messages, 4)
			assert.Equal(t, "What should I eat?", req.Messages[1].Content)
			assert.Equal(t, llm.RoleAssistant, req.Messages[2].Role)
			assert.Equal(t, "and after that?", req.Messages[3].Content)
			return &llm.CompletionResponse{Content: "More protein."}, nil
		},
	}

	history := []llm.Message{
		{Role: llm.RoleUser, Content: "What should I eat?"},
		{Role: llm.RoleAssistant, Content: "Plenty of vegetables."},
	}

	o := newTestOrchestrator(client, store.NewMemoryPlanStore())
	res := o.Respond(context.Background(), "and after that?", history, TrustedContext{UserID: "alice"})

	assert.Equal(t, "More protein.", res.Response)
}

func TestBuildSystemPrompt(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	prompt := BuildSystemPrompt("FitBot", "", now)
	assert.Contains(t, prompt, "You are FitBot")
	assert.Contains(t, prompt, "save_fitness_plan")
	assert.Contains(t, prompt, "2026-03-14")

	withExtra := BuildSystemPrompt("", "Always answer in French.", now)
	assert.Contains(t, withExtra, "You are FitBot")
	assert.Contains(t, withExtra, "Always answer in French.")
}
