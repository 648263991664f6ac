package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jessedrelick/agens/core"
	"github.com/jessedrelick/agens/internal/testutil"
	"github.com/jessedrelick/agens/serving"
	"github.com/jessedrelick/agens/supervisor"
	"github.com/jessedrelick/agens/tool"
)

const manifestDoc = `
servings:
  - name: echo
    backend: echo

agents:
  - name: repeater
    serving: echo
  - name: shouter
    serving: echo
    tool: upper

jobs:
  - name: relay
    description: Pass text along.
    steps:
      - agent: repeater
        objective: Repeat the input.
      - agent: shouter
        conditions:
          default: end
`

func echoBackend() serving.Backend {
	return serving.WorkerFunc(func(ctx context.Context, msg *core.Message) (string, error) {
		return msg.Input, nil
	})
}

func upperTool() tool.Tool {
	return tool.NewFunc("upper", "", func(args map[string]any) (any, error) {
		return args["input"], nil
	})
}

func TestParse(t *testing.T) {
	m, err := Parse([]byte(manifestDoc))
	require.NoError(t, err)

	require.Len(t, m.Servings, 1)
	assert.Equal(t, "echo", m.Servings[0].Name)
	assert.Equal(t, "echo", m.Servings[0].Backend)

	require.Len(t, m.Agents, 2)
	assert.Equal(t, "repeater", m.Agents[0].Name)
	assert.Equal(t, "", m.Agents[0].ToolName)
	assert.Equal(t, "upper", m.Agents[1].ToolName)

	require.Len(t, m.Jobs, 1)
	require.Len(t, m.Jobs[0].Steps, 2)
	assert.Equal(t, "Repeat the input.", m.Jobs[0].Steps[0].Objective)
	require.NotNil(t, m.Jobs[0].Steps[1].Conditions)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("servings: {not a list}"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifestDoc), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, m.Jobs, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	m, err := Parse([]byte(manifestDoc))
	require.NoError(t, err)

	sup := supervisor.New()
	err = m.Apply(sup,
		map[string]serving.Backend{"echo": echoBackend()},
		map[string]tool.Tool{"upper": upperTool()},
	)
	require.NoError(t, err)

	cfg, err := sup.GetAgentConfig("shouter")
	require.NoError(t, err)
	assert.NotNil(t, cfg.Tool)

	ch, err := sup.RunJob(context.Background(), "relay", "hello")
	require.NoError(t, err)
	events := testutil.Collect(t, ch, 2*time.Second)
	assert.Equal(t, core.EventJobEnded, testutil.Last(t, events).Type)
}

func TestApply_UnknownBackend(t *testing.T) {
	m, err := Parse([]byte(manifestDoc))
	require.NoError(t, err)

	err = m.Apply(supervisor.New(), nil, map[string]tool.Tool{"upper": upperTool()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestApply_UnknownTool(t *testing.T) {
	m, err := Parse([]byte(manifestDoc))
	require.NoError(t, err)

	err = m.Apply(supervisor.New(), map[string]serving.Backend{"echo": echoBackend()}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}
