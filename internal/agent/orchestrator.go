package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IstiaqueAhmd/fitness-agent/internal/llm"
	"github.com/IstiaqueAhmd/fitness-agent/internal/logging"
)

// OrchestratorConfig configures the conversation orchestrator.
type OrchestratorConfig struct {
	AgentName   string
	Model       string
	Fallbacks   []string
	MaxTokens   int
	Temperature *float64
	ExtraPrompt string
}

// Result is the outcome of processing one user message.
type Result struct {
	Response  string        `json:"response"`
	ToolCalls int           `json:"tool_calls"`
	Model     string        `json:"model,omitempty"`
	Usage     llm.Usage     `json:"usage"`
	Duration  time.Duration `json:"duration"`
}

// Orchestrator runs the two-phase conversation flow: one model call with
// the tool catalogue, tool dispatch, then one final call without tools.
type Orchestrator struct {
	cfg        OrchestratorConfig
	client     llm.Client
	tools      *ToolRegistry
	dispatcher *Dispatcher
	log        *logging.Logger
}

// NewOrchestrator creates an orchestrator over the given registry.
func NewOrchestrator(
	cfg OrchestratorConfig,
	registry *llm.Registry,
	tools *ToolRegistry,
	dispatcher *Dispatcher,
	log *logging.Logger,
) *Orchestrator {
	fc := NewFailoverClient(registry, cfg.Model, cfg.Fallbacks, log)
	return &Orchestrator{
		cfg:        cfg,
		client:     fc,
		tools:      tools,
		dispatcher: dispatcher,
		log:        log.Sub("orchestrator"),
	}
}

// NewOrchestratorWithClient is like NewOrchestrator but uses the given
// client directly. Used by tests.
func NewOrchestratorWithClient(
	cfg OrchestratorConfig,
	client llm.Client,
	tools *ToolRegistry,
	dispatcher *Dispatcher,
	log *logging.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		client:     client,
		tools:      tools,
		dispatcher: dispatcher,
		log:        log.Sub("orchestrator"),
	}
}

// Respond processes one user message against the given conversation history.
//
// Model and tool failures never escape: tool errors are fed back to the model
// as error results, and model failures produce an apologetic reply. Callers
// always get text they can show the user.
func (o *Orchestrator) Respond(ctx context.Context, userMessage string, history []llm.Message, trusted TrustedContext) *Result {
	start := time.Now()

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: BuildSystemPrompt(o.cfg.AgentName, o.cfg.ExtraPrompt, time.Now()),
	})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userMessage})

	req := llm.CompletionRequest{
		Model:       o.cfg.Model,
		Messages:    messages,
		Tools:       o.tools.Definitions(),
		ToolChoice:  "auto",
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
	}

	resp, err := o.client.Complete(ctx, req)
	if err != nil {
		o.log.Error().Err(err).Msg("completion failed")
		return o.apology(err, start)
	}

	if len(resp.ToolCalls) == 0 {
		return o.result(resp, 0, start)
	}

	o.log.Info().Int("toolCalls", len(resp.ToolCalls)).Msg("executing tool calls")

	// Record the assistant turn that requested the tools, then one tool
	// result turn per call.
	messages = append(messages, llm.Message{
		Role:      llm.RoleAssistant,
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
	})

	for _, call := range resp.ToolCalls {
		output := o.executeCall(ctx, call, trusted)
		messages = append(messages, llm.Message{
			Role:       llm.RoleTool,
			Content:    output,
			ToolCallID: call.ID,
			Name:       call.Name,
		})
	}

	// Final call: no tool catalogue, the model only narrates the results.
	final := llm.CompletionRequest{
		Model:       o.cfg.Model,
		Messages:    messages,
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
	}

	finalResp, err := o.client.Complete(ctx, final)
	if err != nil {
		o.log.Error().Err(err).Msg("final completion failed")
		return o.apology(err, start)
	}

	res := o.result(finalResp, len(resp.ToolCalls), start)
	res.Usage.PromptTokens += resp.Usage.PromptTokens
	res.Usage.CompletionTokens += resp.Usage.CompletionTokens
	res.Usage.TotalTokens += resp.Usage.TotalTokens
	return res
}

// executeCall parses and dispatches one tool call. Failures of any kind
// become an error payload the model can read.
func (o *Orchestrator) executeCall(ctx context.Context, call llm.ToolCall, trusted TrustedContext) string {
	var args map[string]any
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			o.log.Warn().Str("tool", call.Name).Err(err).Msg("malformed tool arguments")
			return errorPayload(fmt.Errorf("invalid arguments: %w", err))
		}
	}

	output, err := o.dispatcher.Dispatch(ctx, call.Name, args, trusted)
	if err != nil {
		o.log.Warn().Str("tool", call.Name).Err(err).Msg("tool execution failed")
		return errorPayload(err)
	}
	return output
}

func (o *Orchestrator) result(resp *llm.CompletionResponse, toolCalls int, start time.Time) *Result {
	o.log.Info().
		Str("model", resp.Model).
		Int("toolCalls", toolCalls).
		Int("promptTokens", resp.Usage.PromptTokens).
		Int("completionTokens", resp.Usage.CompletionTokens).
		Dur("duration", time.Since(start)).
		Msg("response generated")

	return &Result{
		Response:  resp.Content,
		ToolCalls: toolCalls,
		Model:     resp.Model,
		Usage:     resp.Usage,
		Duration:  time.Since(start),
	}
}

func (o *Orchestrator) apology(err error, start time.Time) *Result {
	return &Result{
		Response: fmt.Sprintf("Sorry, I encountered an error: %v. Please try again.", err),
		Duration: time.Since(start),
	}
}

func errorPayload(err error) string {
	out, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(out)
}
