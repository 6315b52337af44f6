package agent

import "fmt"

// UnknownToolError is returned when the model requests a tool outside the
// fixed catalogue. It is contained as a tool-result error turn, never a
// crash.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Name)
}

// MissingDependencyError is returned when a tool requires a collaborator
// (the plan store) that was not provided at construction time.
type MissingDependencyError struct {
	Tool       string
	Dependency string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("tool %s requires %s, which is not configured", e.Tool, e.Dependency)
}
