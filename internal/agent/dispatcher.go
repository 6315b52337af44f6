package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IstiaqueAhmd/fitness-agent/internal/logging"
)

// TrustedContext carries identity values from the authenticated caller.
// They are never overridable by model-generated content.
type TrustedContext struct {
	UserID    string
	SessionID string
}

// Dispatcher routes tool-call requests to registered tools, injecting
// trusted identity into the untrusted argument mapping first.
type Dispatcher struct {
	tools *ToolRegistry
	log   *logging.Logger
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(tools *ToolRegistry, log *logging.Logger) *Dispatcher {
	return &Dispatcher{tools: tools, log: log.Sub("dispatcher")}
}

// Dispatch executes the named tool with the given argument mapping.
//
// Arguments come from the model and are untrusted: the trusted user id
// always overwrites any model-supplied user_id, so the model cannot act on
// behalf of another user. The session id is injected only when absent.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any, trusted TrustedContext) (string, error) {
	tool, ok := d.tools.Get(name)
	if !ok {
		return "", &UnknownToolError{Name: name}
	}

	if args == nil {
		args = make(map[string]any)
	}
	args["user_id"] = trusted.UserID
	if _, ok := args["session_id"]; !ok && trusted.SessionID != "" {
		args["session_id"] = trusted.SessionID
	}

	payload, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("encoding tool arguments: %w", err)
	}

	d.log.Debug().Str("tool", name).Msg("executing tool")
	return tool.Execute(ctx, payload)
}
