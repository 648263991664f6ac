package core

import "context"

// Message is the transient per-invocation value carrying input, built prompt
// and result across the agent, serving and job boundaries. A Message is
// created fresh for each step dispatch and discarded once its result has
// propagated back to the engine; it is never persisted or reused.
type Message struct {
	// Input is the text handed to the step. Required.
	Input string
	// Prompt is the fully composed (and finalized) prompt text. Set by the
	// agent worker before dispatch.
	Prompt string
	// Result is the step outcome: the serving output, or the tool-processed
	// output when the agent carries a tool.
	Result string

	// Routing fields.
	AgentName   string
	ServingName string

	// Job context merged into the prompt and stamped onto emitted events.
	JobName        string
	JobDescription string
	StepIndex      int
	StepObjective  string

	// Events is the caller handle: tool lifecycle events for this step are
	// sent here. May be nil when no caller is observing.
	Events chan<- Event
}

// Validate checks the message invariants enforced at the send boundary,
// before any dispatch occurs.
func (m *Message) Validate() error {
	if m.Input == "" {
		return ErrInputRequired
	}

	if m.AgentName == "" && m.ServingName == "" {
		return ErrNoAgentOrServing
	}

	return nil
}

// Emit sends an event to the caller handle if one is attached. Sends block
// until the caller drains its channel, preserving per-step event ordering;
// once the run context is cancelled the event is dropped instead, so an
// abandoned channel never wedges the emitting worker.
func (m *Message) Emit(ctx context.Context, e Event) {
	if m.Events == nil {
		return
	}
	select {
	case m.Events <- e:
	case <-ctx.Done():
	}
}
