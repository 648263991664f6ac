package tool

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunc_Defaults(t *testing.T) {
	f := NewFunc("echo", "Reply with a JSON object.", func(args map[string]any) (any, error) {
		return args["input"], nil
	})

	assert.Equal(t, "echo", f.Name())
	assert.Equal(t, "Reply with a JSON object.", f.Instructions())
	assert.Equal(t, "raw text", f.Pre("raw text"))

	args, err := f.ToArgs("not json")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"input": "not json"}, args)

	outcome, err := f.Execute(args)
	require.NoError(t, err)
	assert.Equal(t, "not json", f.Post(outcome, err))
}

func TestFunc_DefaultToArgsParsesJSON(t *testing.T) {
	f := NewFunc("calc", "", func(args map[string]any) (any, error) { return nil, nil })

	args, err := f.ToArgs(`{"a": 1, "op": "add"}`)
	require.NoError(t, err)
	assert.Equal(t, float64(1), args["a"])
	assert.Equal(t, "add", args["op"])
}

func TestFunc_PreOverride(t *testing.T) {
	f := NewFunc("shout", "", func(args map[string]any) (any, error) { return nil, nil },
		func(o *FuncOptions) {
			o.Pre = func(input string) string { return "[" + input + "]" }
		})

	assert.Equal(t, "[hi]", f.Pre("hi"))
}

func TestFunc_ExecuteWrapsPlainErrors(t *testing.T) {
	f := NewFunc("flaky", "", func(args map[string]any) (any, error) {
		return nil, errors.New("backend unavailable")
	})

	_, err := f.Execute(nil)
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "flaky", toolErr.Tool)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Equal(t, "backend unavailable", toolErr.Message)
}

func TestFunc_ExecuteForwardsToolError(t *testing.T) {
	custom := NewToolError("lookup", "record not found", "NOT_FOUND")
	f := NewFunc("lookup", "", func(args map[string]any) (any, error) {
		return nil, custom
	})

	_, err := f.Execute(nil)
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Same(t, custom, toolErr)
	assert.Equal(t, "NOT_FOUND", toolErr.Code)
}

func TestFunc_SchemaValidation(t *testing.T) {
	f := NewFunc("add", "", func(args map[string]any) (any, error) {
		return args["a"].(float64) + args["b"].(float64), nil
	}, func(o *FuncOptions) {
		o.Parameters = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"a": map[string]any{"type": "number"},
				"b": map[string]any{"type": "number"},
			},
			"required": []string{"a", "b"},
		}
	})

	outcome, err := f.Execute(map[string]any{"a": float64(2), "b": float64(3)})
	require.NoError(t, err)
	assert.Equal(t, float64(5), outcome)

	_, err = f.Execute(map[string]any{"a": float64(2)})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestNewFuncFromStruct(t *testing.T) {
	type addArgs struct {
		A float64 `json:"a" description:"First operand"`
		B float64 `json:"b" description:"Second operand"`
	}

	f := NewFuncFromStruct("add", "", addArgs{}, func(args map[string]any) (any, error) {
		return args["a"].(float64) + args["b"].(float64), nil
	})

	_, err := f.Execute(map[string]any{"a": "two", "b": float64(3)})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)

	outcome, err := f.Execute(map[string]any{"a": float64(2), "b": float64(3)})
	require.NoError(t, err)
	assert.Equal(t, float64(5), outcome)
}

func TestDefaultPost(t *testing.T) {
	assert.Equal(t, "done", defaultPost("done", nil))
	assert.Equal(t, "42", defaultPost(42, nil))
	assert.Equal(t, "boom", defaultPost(nil, errors.New("boom")))
}

func TestToolError_Error(t *testing.T) {
	err := NewToolError("calc", "division by zero", "EXECUTION_ERROR")
	assert.Contains(t, err.Error(), "calc")
	assert.Contains(t, err.Error(), "division by zero")
}
