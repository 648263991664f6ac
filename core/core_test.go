package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage_Validate(t *testing.T) {
	msg := &Message{Input: "hello", AgentName: "writer"}
	assert.NoError(t, msg.Validate())

	msg = &Message{AgentName: "writer"}
	assert.ErrorIs(t, msg.Validate(), ErrInputRequired)

	msg = &Message{Input: "hello"}
	assert.ErrorIs(t, msg.Validate(), ErrNoAgentOrServing)

	// A serving name alone is sufficient for routing.
	msg = &Message{Input: "hello", ServingName: "gpt"}
	assert.NoError(t, msg.Validate())
}

func TestMessage_EmitWithoutCaller(t *testing.T) {
	msg := &Message{Input: "hello", AgentName: "writer"}

	// No caller handle attached: emission is a no-op, not a panic.
	msg.Emit(context.Background(), NewJobStartedEvent("demo"))
}

func TestMessage_EmitDeliversInOrder(t *testing.T) {
	ch := make(chan Event, 2)
	msg := &Message{Input: "x", AgentName: "a", Events: ch}

	msg.Emit(context.Background(), NewToolStartedEvent("demo", 0, "FALSE"))
	msg.Emit(context.Background(), NewToolResultEvent("demo", 0, "TRUE"))
	close(ch)

	first := <-ch
	second := <-ch
	assert.Equal(t, EventToolStarted, first.Type)
	assert.Equal(t, EventToolResult, second.Type)
}

func TestMessage_EmitCancelledContextDropsEvent(t *testing.T) {
	// Full channel with no reader: a cancelled context must unblock the send.
	ch := make(chan Event, 1)
	ch <- NewJobStartedEvent("demo")
	msg := &Message{Input: "x", AgentName: "a", Events: ch}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msg.Emit(ctx, NewToolResultEvent("demo", 0, "TRUE"))
	assert.Len(t, ch, 1, "the event is dropped, not queued")
}

func TestEventConstructors(t *testing.T) {
	started := NewJobStartedEvent("demo")
	assert.Equal(t, EventJobStarted, started.Type)
	assert.Equal(t, "demo", started.JobName)
	assert.Equal(t, -1, started.StepIndex)
	assert.NotEmpty(t, started.ID)
	assert.False(t, started.Timestamp.IsZero())

	step := NewStepStartedEvent("demo", 2, "input text")
	assert.Equal(t, 2, step.StepIndex)
	assert.Equal(t, "input text", step.Payload)

	ended := NewJobEndedEvent("demo")
	assert.Equal(t, "complete", ended.Payload)
	assert.True(t, ended.IsTerminal())

	cause := errors.New("boom")
	failed := NewJobErrorEvent("demo", 3, cause)
	assert.True(t, failed.IsTerminal())
	assert.Equal(t, cause, failed.Err)
	assert.Equal(t, "boom", failed.Payload)
	assert.Equal(t, 3, failed.StepIndex)

	assert.False(t, step.IsTerminal())
}

func TestEventIDsAreUnique(t *testing.T) {
	a := NewJobStartedEvent("demo")
	b := NewJobStartedEvent("demo")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestPrefixes_GetFallsBackToDefaults(t *testing.T) {
	custom := Prefixes{"input": {Heading: "Data", Description: "Raw data."}}

	assert.Equal(t, "Data", custom.Get("input").Heading)
	assert.Equal(t, DefaultPrefixes()["objective"], custom.Get("objective"))

	var none Prefixes
	assert.Equal(t, DefaultPrefixes()["input"], none.Get("input"))
}

func TestPrompt_Empty(t *testing.T) {
	assert.True(t, Prompt{}.Empty())
	assert.False(t, Prompt{Identity: "You are a poet."}.Empty())
}
