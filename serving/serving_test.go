package serving

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jessedrelick/agens/core"
)

func TestRunner_Run(t *testing.T) {
	backend := WorkerFunc(func(ctx context.Context, msg *core.Message) (string, error) {
		return "echo: " + msg.Prompt, nil
	})
	runner := NewRunner(Config{Name: "echo"}, backend)

	text, err := runner.Run(context.Background(), &core.Message{Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", text)
}

func TestRunner_RunWrapsBackendError(t *testing.T) {
	cause := errors.New("model overloaded")
	backend := WorkerFunc(func(ctx context.Context, msg *core.Message) (string, error) {
		return "", cause
	})
	runner := NewRunner(Config{Name: "gpt"}, backend)

	_, err := runner.Run(context.Background(), &core.Message{Prompt: "hello"})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "serving gpt")
}

func TestRunner_RunWithoutBackend(t *testing.T) {
	runner := NewRunner(Config{Name: "gpt"}, nil)

	_, err := runner.Run(context.Background(), &core.Message{Prompt: "hello"})
	assert.ErrorIs(t, err, core.ErrServingNotRunning)
}

func TestRunner_Config(t *testing.T) {
	finalize := func(prompt string) string { return "<s>" + prompt + "</s>" }
	runner := NewRunner(Config{Name: "llama", Finalize: finalize}, nil)

	cfg := runner.Config()
	assert.Equal(t, "llama", cfg.Name)
	require.NotNil(t, cfg.Finalize)
	assert.Equal(t, "<s>hi</s>", cfg.Finalize("hi"))
}
