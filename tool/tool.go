// Package tool defines the capability contract that lets agents post-process
// serving results through a pre/to-args/execute/post pipeline, plus a generic
// closure-based adapter (Func) with schema validated arguments and consistent
// error handling.
package tool

import "fmt"

// Tool is the capability interface an agent may carry. The pipeline runs in a
// fixed order around each serving call:
//
//  1. Pre rewrites the step input before prompt inclusion.
//  2. Instructions contributes static usage text to the prompt.
//  3. ToArgs parses the serving's raw result into structured arguments.
//  4. Execute performs the tool's action, returning an outcome or an error.
//  5. Post renders the outcome (success or error) back into a string usable
//     as the next step's input.
//
// The outcome value is opaque to everything except Post; the agent and job
// layers never inspect its shape.
type Tool interface {
	// Pre pre-processes raw step input before it is merged into the prompt.
	Pre(input string) string

	// Instructions returns static text describing tool usage. When non-empty
	// it is rendered into the prompt under the instructions prefix.
	Instructions() string

	// ToArgs parses the serving result into arguments for Execute.
	ToArgs(result string) (map[string]any, error)

	// Execute performs the tool's side-effecting or computational action.
	Execute(args map[string]any) (any, error)

	// Post renders the execution outcome, success or error, into the text
	// that replaces the step result.
	Post(outcome any, err error) string
}

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
