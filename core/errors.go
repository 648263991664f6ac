package core

import "errors"

// Lookup errors. Returned as typed values at the boundary where the lookup
// occurs; callers can recover by starting the missing worker and retrying.
var (
	// ErrAgentNotRunning indicates a message was dispatched to an agent name
	// with no live worker behind it.
	ErrAgentNotRunning = errors.New("agent not running")

	// ErrServingNotRunning indicates an agent's serving reference resolved to
	// no live runner at dispatch time.
	ErrServingNotRunning = errors.New("serving not running")

	// ErrAgentNotFound indicates no agent is registered under the given name.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrServingNotFound indicates no serving is registered under the given name.
	ErrServingNotFound = errors.New("serving not found")

	// ErrJobNotFound indicates no job is registered under the given name.
	ErrJobNotFound = errors.New("job not found")
)

// Input validation errors. Returned synchronously before any dispatch occurs;
// no events are emitted and no side effects are produced.
var (
	// ErrInputRequired indicates a message carried an empty input.
	ErrInputRequired = errors.New("input required")

	// ErrNoAgentOrServing indicates a message named neither an agent nor a
	// serving to route to.
	ErrNoAgentOrServing = errors.New("no agent or serving name provided")
)

// Concurrency-guard errors.
var (
	// ErrJobAlreadyRunning indicates Run was called on an engine that is
	// mid-execution. Hard rejection; the in-flight run is unaffected.
	ErrJobAlreadyRunning = errors.New("job already running")

	// ErrJobTerminated indicates Run was called on an engine that already
	// reached a terminal state. A fresh instance must be started (the
	// supervisor does this automatically after each terminal run).
	ErrJobTerminated = errors.New("job terminated")
)
