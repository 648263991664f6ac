package agens

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jessedrelick/agens/agent"
	"github.com/jessedrelick/agens/core"
	"github.com/jessedrelick/agens/internal/testutil"
	"github.com/jessedrelick/agens/job"
	"github.com/jessedrelick/agens/serving"
	"github.com/jessedrelick/agens/tool"
)

func setup(t *testing.T) *Agens {
	t.Helper()

	a := New()

	_, err := a.StartServing(serving.Config{Name: "echo"}, serving.WorkerFunc(
		func(ctx context.Context, msg *core.Message) (string, error) {
			return msg.Input, nil
		}))
	require.NoError(t, err)

	_, err = a.StartAgents([]agent.Config{
		{Name: "repeater", Serving: "echo"},
		{Name: "shouter", Serving: "echo", Tool: tool.NewFunc("upper", "", func(args map[string]any) (any, error) {
			return strings.ToUpper(args["input"].(string)), nil
		})},
	})
	require.NoError(t, err)

	_, err = a.StartJob(job.Config{
		Name:        "relay",
		Description: "Pass the text along, shouting at the end.",
		Steps: []job.Step{
			{Agent: "repeater"},
			{Agent: "shouter", Conditions: &job.Conditions{Default: job.End()}},
		},
	})
	require.NoError(t, err)

	return a
}

func TestRunSync(t *testing.T) {
	a := setup(t)

	events, err := a.RunSync(context.Background(), "relay", "hello world")
	require.NoError(t, err)

	types := testutil.Types(events)
	assert.Equal(t, core.EventJobStarted, types[0])
	assert.Equal(t, core.EventJobEnded, types[len(types)-1])
	assert.Equal(t, []string{"hello world", "HELLO WORLD"},
		testutil.Payloads(events, core.EventStepResult))
}

func TestRunSync_JobError(t *testing.T) {
	a := setup(t)
	require.NoError(t, a.StopAgent("shouter"))

	events, err := a.RunSync(context.Background(), "relay", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrAgentNotRunning)
	assert.Equal(t, core.EventJobError, testutil.Last(t, events).Type)
}

func TestRun_Async(t *testing.T) {
	a := setup(t)

	ch, err := a.Run(context.Background(), "relay", "hello")
	require.NoError(t, err)

	events := testutil.Collect(t, ch, 2*time.Second)
	assert.Equal(t, core.EventJobEnded, testutil.Last(t, events).Type)
}

func TestRun_UnknownJob(t *testing.T) {
	a := New()

	_, err := a.Run(context.Background(), "ghost", "hello")
	assert.ErrorIs(t, err, core.ErrJobNotFound)
}

func TestGetConfigs(t *testing.T) {
	a := setup(t)

	servingCfg, err := a.GetServingConfig("echo")
	require.NoError(t, err)
	assert.Equal(t, "echo", servingCfg.Name)

	agentCfg, err := a.GetAgentConfig("shouter")
	require.NoError(t, err)
	assert.NotNil(t, agentCfg.Tool)

	jobCfg, err := a.GetJobConfig("relay")
	require.NoError(t, err)
	assert.Len(t, jobCfg.Steps, 2)
}

func TestStopServing_AffectsNextRun(t *testing.T) {
	a := setup(t)
	require.NoError(t, a.StopServing("echo"))

	events, err := a.RunSync(context.Background(), "relay", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrServingNotRunning)
	assert.Equal(t, core.EventJobError, testutil.Last(t, events).Type)
}
