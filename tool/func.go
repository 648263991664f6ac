package tool

import (
	"encoding/json"
	"fmt"

	"github.com/jessedrelick/agens/internal/util"
)

// FuncOptions customize a Func beyond its required execute stage. Every hook
// has a sensible default so simple tools only supply Execute.
type FuncOptions struct {
	// Pre rewrites step input before prompt inclusion. Defaults to identity.
	Pre func(input string) string

	// ToArgs parses the serving result into arguments. Defaults to treating
	// the result as a JSON object, falling back to {"input": result} for
	// non-JSON text.
	ToArgs func(result string) (map[string]any, error)

	// Post renders the outcome. Defaults to fmt.Sprintf("%v", outcome) for
	// success and the error message for failure.
	Post func(outcome any, err error) string

	// Parameters is an optional JSON-Schema-like argument specification.
	// When set, arguments are validated before Execute runs.
	Parameters map[string]any
}

// Func adapts plain Go closures to the Tool interface.
//
// Responsibilities:
//   - Validates parsed arguments against an optional schema before execution
//   - Normalizes error handling so failures surface as *ToolError with
//     consistent codes: VALIDATION_ERROR for schema mismatches,
//     EXECUTION_ERROR for plain errors (custom codes preserved when the
//     closure returns *ToolError directly)
//
// A Func has no internal mutable state after construction and is safe for
// concurrent use by multiple goroutines.
type Func struct {
	name         string
	instructions string
	parameters   map[string]any
	pre          func(string) string
	toArgs       func(string) (map[string]any, error)
	execute      func(map[string]any) (any, error)
	post         func(any, error) string
}

// NewFunc constructs a Func from an execute closure and optional overrides.
//
// Arguments:
//
//	name         - tool name used in error codes and logs (snake_case suggested)
//	instructions - static usage text merged into the prompt; may be empty
//	execute      - implementation receiving already-validated args
func NewFunc(
	name, instructions string,
	execute func(args map[string]any) (any, error),
	optFns ...func(o *FuncOptions),
) *Func {
	opts := FuncOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	f := &Func{
		name:         name,
		instructions: instructions,
		parameters:   opts.Parameters,
		pre:          opts.Pre,
		toArgs:       opts.ToArgs,
		execute:      execute,
		post:         opts.Post,
	}

	if f.pre == nil {
		f.pre = func(input string) string { return input }
	}
	if f.toArgs == nil {
		f.toArgs = defaultToArgs
	}
	if f.post == nil {
		f.post = defaultPost
	}

	return f
}

// NewFuncFromStruct derives the parameter schema from a struct via reflection,
// equivalent to setting Parameters to util.CreateSchema(structType).
func NewFuncFromStruct(
	name, instructions string,
	structType any,
	execute func(args map[string]any) (any, error),
	optFns ...func(o *FuncOptions),
) *Func {
	return NewFunc(name, instructions, execute, append(optFns, func(o *FuncOptions) {
		o.Parameters = util.CreateSchema(structType)
	})...)
}

// Name returns the tool name used in error codes and logs.
func (f *Func) Name() string { return f.name }

// Pre implements Tool.
func (f *Func) Pre(input string) string { return f.pre(input) }

// Instructions implements Tool.
func (f *Func) Instructions() string { return f.instructions }

// ToArgs implements Tool.
func (f *Func) ToArgs(result string) (map[string]any, error) {
	return f.toArgs(result)
}

// Execute implements Tool. Arguments are validated against the declared
// schema (when present) before the wrapped closure runs. Validation or
// execution failures are wrapped (or passed through) as *ToolError.
func (f *Func) Execute(args map[string]any) (any, error) {
	if f.parameters != nil {
		if err := util.ValidateArgs(args, f.parameters); err != nil {
			return nil, &ToolError{
				Tool:    f.name,
				Message: fmt.Sprintf("argument validation failed: %v", err),
				Code:    "VALIDATION_ERROR",
				Details: err,
			}
		}
	}

	outcome, err := f.execute(args)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok { // already a ToolError -> forward
			return nil, toolErr
		}

		return nil, &ToolError{
			Tool:    f.name,
			Message: err.Error(),
			Code:    "EXECUTION_ERROR",
		}
	}

	return outcome, nil
}

// Post implements Tool.
func (f *Func) Post(outcome any, err error) string { return f.post(outcome, err) }

func defaultToArgs(result string) (map[string]any, error) {
	var args map[string]any
	if err := json.Unmarshal([]byte(result), &args); err != nil {
		return map[string]any{"input": result}, nil
	}
	return args, nil
}

func defaultPost(outcome any, err error) string {
	if err != nil {
		return err.Error()
	}
	if s, ok := outcome.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", outcome)
}
