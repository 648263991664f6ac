package core

import (
	"time"

	"github.com/google/uuid"
)

// EventType discriminates the events emitted over a job's lifetime.
type EventType string

const (
	// EventJobStarted marks acceptance of a run; emitted once, first.
	EventJobStarted EventType = "job_started"
	// EventStepStarted marks the dispatch of a step's input to its agent.
	EventStepStarted EventType = "step_started"
	// EventStepResult carries a step's final result text.
	EventStepResult EventType = "step_result"
	// EventToolStarted carries the serving result about to enter a tool pipeline.
	EventToolStarted EventType = "tool_started"
	// EventToolRaw carries the raw outcome of a tool's Execute, rendered by Post.
	EventToolRaw EventType = "tool_raw"
	// EventToolResult carries the post-processed tool output that replaces the
	// step result.
	EventToolResult EventType = "tool_result"
	// EventJobEnded marks successful completion; emitted once, last.
	EventJobEnded EventType = "job_ended"
	// EventJobError marks fatal termination; emitted once, last, with Err set.
	EventJobError EventType = "job_error"
)

// Event is the unit of progress notification streamed to the caller that
// started a job run. After emission it should be treated as immutable.
//
// StepIndex is meaningful for step- and tool-scoped events and for JobError;
// it is -1 on JobStarted and JobEnded. Err is non-nil only on JobError.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	JobName   string    `json:"job_name"`
	StepIndex int       `json:"step_index"`
	Payload   string    `json:"payload,omitempty"`
	Err       error     `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

// NewID generates a unique identifier for event correlation.
func NewID() string { return uuid.NewString() }

func newEvent(t EventType, jobName string, stepIndex int) Event {
	return Event{
		ID:        NewID(),
		Type:      t,
		JobName:   jobName,
		StepIndex: stepIndex,
		Timestamp: time.Now().UTC(),
	}
}

// NewJobStartedEvent records acceptance of a run for the named job.
func NewJobStartedEvent(jobName string) Event {
	return newEvent(EventJobStarted, jobName, -1)
}

// NewStepStartedEvent records dispatch of input to the step at stepIndex.
func NewStepStartedEvent(jobName string, stepIndex int, input string) Event {
	e := newEvent(EventStepStarted, jobName, stepIndex)
	e.Payload = input
	return e
}

// NewStepResultEvent records the final result text of the step at stepIndex.
func NewStepResultEvent(jobName string, stepIndex int, result string) Event {
	e := newEvent(EventStepResult, jobName, stepIndex)
	e.Payload = result
	return e
}

// NewToolStartedEvent records entry into a tool pipeline carrying the serving
// result produced so far.
func NewToolStartedEvent(jobName string, stepIndex int, result string) Event {
	e := newEvent(EventToolStarted, jobName, stepIndex)
	e.Payload = result
	return e
}

// NewToolRawEvent records the rendered raw outcome of a tool execution.
func NewToolRawEvent(jobName string, stepIndex int, raw string) Event {
	e := newEvent(EventToolRaw, jobName, stepIndex)
	e.Payload = raw
	return e
}

// NewToolResultEvent records the post-processed tool output.
func NewToolResultEvent(jobName string, stepIndex int, result string) Event {
	e := newEvent(EventToolResult, jobName, stepIndex)
	e.Payload = result
	return e
}

// NewJobEndedEvent records successful completion of the named job.
func NewJobEndedEvent(jobName string) Event {
	e := newEvent(EventJobEnded, jobName, -1)
	e.Payload = "complete"
	return e
}

// NewJobErrorEvent records fatal termination at stepIndex with the given cause.
func NewJobErrorEvent(jobName string, stepIndex int, err error) Event {
	e := newEvent(EventJobError, jobName, stepIndex)
	e.Err = err
	if err != nil {
		e.Payload = err.Error()
	}
	return e
}

// IsTerminal reports whether this event ends the job's event stream.
func (e Event) IsTerminal() bool {
	return e.Type == EventJobEnded || e.Type == EventJobError
}
