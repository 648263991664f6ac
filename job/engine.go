package job

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jessedrelick/agens/agent"
	"github.com/jessedrelick/agens/core"
	"github.com/jessedrelick/agens/logging"
	"github.com/jessedrelick/agens/registry"
)

// Status enumerates the engine lifecycle states.
type Status int

const (
	// StatusInit is the state between Start and the first accepted Run.
	StatusInit Status = iota
	// StatusRunning means a run is executing steps.
	StatusRunning
	// StatusError is terminal: the run ended with a fatal error.
	StatusError
	// StatusComplete is terminal: the run reached an explicit end target.
	StatusComplete
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusInit:
		return "init"
	case StatusRunning:
		return "running"
	case StatusError:
		return "error"
	case StatusComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// EngineOptions customize an Engine.
type EngineOptions struct {
	// Logger for step diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger

	// EventBufferSize sets the buffering of the event channel returned by
	// Run. Defaults to 64.
	EventBufferSize int
}

// Engine is the state machine driving one job instance. It executes steps
// strictly sequentially: a step's full event sequence (step_started, optional
// tool events, step_result) is emitted before the next step, or the terminal
// event, begins. Different engines run fully concurrently and independently.
//
// An engine is single-use. After the terminal event its channel is closed and
// Run rejects with ErrJobTerminated; a fresh engine (supervisor restart)
// starts over at step index 0 with no memory of the prior run.
type Engine struct {
	cfg     Config
	agents  *registry.Registry[*agent.Worker]
	logger  logging.Logger
	bufSize int

	mu        sync.Mutex
	status    Status
	stepIndex int

	done chan struct{}
}

// NewEngine constructs an engine in init state holding the config. No step
// executes until Run is called.
func NewEngine(cfg Config, agents *registry.Registry[*agent.Worker], optFns ...func(o *EngineOptions)) *Engine {
	opts := EngineOptions{
		Logger:          logging.NoOpLogger{},
		EventBufferSize: 64,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Engine{
		cfg:     cfg,
		agents:  agents,
		logger:  opts.Logger,
		bufSize: opts.EventBufferSize,
		status:  StatusInit,
		done:    make(chan struct{}),
	}
}

// Config returns the job's static configuration.
func (e *Engine) Config() Config { return e.cfg }

// Status returns the engine's current lifecycle state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// StepIndex returns the position of the currently (or last) executing step.
func (e *Engine) StepIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stepIndex
}

// Done returns a channel closed when the engine reaches a terminal state.
// Used by the supervisor's restart policy.
func (e *Engine) Done() <-chan struct{} { return e.done }

// Run accepts input and begins asynchronous step execution, returning the
// event channel the caller observes progress on. The channel receives
// job_started immediately, the per-step event sequences, and exactly one
// terminal event (job_ended or job_error) before it is closed. Cancelling
// ctx terminates the run with a job_error carrying the context error; if the
// caller has also stopped draining the channel, that terminal event may be
// dropped rather than block the engine.
//
// Run returns ErrJobAlreadyRunning while a run is mid-execution and
// ErrJobTerminated once the engine is spent. Empty input is rejected with
// ErrInputRequired before any event is emitted.
func (e *Engine) Run(ctx context.Context, input string) (<-chan core.Event, error) {
	if input == "" {
		return nil, core.ErrInputRequired
	}

	e.mu.Lock()
	switch e.status {
	case StatusRunning:
		e.mu.Unlock()
		return nil, core.ErrJobAlreadyRunning
	case StatusError, StatusComplete:
		e.mu.Unlock()
		return nil, core.ErrJobTerminated
	}
	e.status = StatusRunning
	e.stepIndex = 0
	e.mu.Unlock()

	events := make(chan core.Event, e.bufSize)

	go e.execute(ctx, input, events)

	return events, nil
}

// execute drives the job to a terminal state. It owns the event channel and
// closes it after the terminal event.
func (e *Engine) execute(ctx context.Context, input string, events chan core.Event) {
	defer close(e.done)
	defer close(events)

	emit := func(ev core.Event) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	// emitTerminal delivers the terminal event even after cancellation,
	// falling back to a non-blocking send so an abandoned channel cannot
	// wedge the engine.
	emitTerminal := func(ev core.Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
			select {
			case events <- ev:
			default:
			}
		}
	}

	fail := func(stepIndex int, err error) {
		e.setStatus(StatusError)
		e.logger.Error("job.error", "job_name", e.cfg.Name, "step_index", stepIndex, "error", err.Error())
		emitTerminal(core.NewJobErrorEvent(e.cfg.Name, stepIndex, err))
	}

	e.logger.Info("job.started", "job_name", e.cfg.Name, "steps", len(e.cfg.Steps))

	if !emit(core.NewJobStartedEvent(e.cfg.Name)) {
		fail(-1, ctx.Err())
		return
	}

	idx := 0
	for {
		if err := ctx.Err(); err != nil {
			fail(idx, err)
			return
		}

		if idx < 0 || idx >= len(e.cfg.Steps) {
			fail(idx, fmt.Errorf("no step at index %d: job must terminate through an explicit end condition", idx))
			return
		}

		e.setStepIndex(idx)
		step := e.cfg.Steps[idx]

		if !emit(core.NewStepStartedEvent(e.cfg.Name, idx, input)) {
			fail(idx, ctx.Err())
			return
		}

		result, err := e.dispatch(ctx, step, idx, input, events)
		if err != nil {
			fail(idx, err)
			return
		}

		if !emit(core.NewStepResultEvent(e.cfg.Name, idx, result)) {
			fail(idx, ctx.Err())
			return
		}

		if step.Conditions == nil {
			input = result
			idx++
			continue
		}

		target, exact := step.Conditions.Resolve(result)
		if !exact {
			e.logger.Debug("job.condition.default", "job_name", e.cfg.Name, "step_index", idx, "result", result)
		}

		switch {
		case target.IsEnd():
			e.setStatus(StatusComplete)
			e.logger.Info("job.complete", "job_name", e.cfg.Name, "step_index", idx)
			emitTerminal(core.NewJobEndedEvent(e.cfg.Name))
			return
		case target.IsGoto():
			input = result
			idx = target.Index()
		default:
			// Misconfigured condition table: a programming error in the job
			// definition, not a transient fault. Terminate so the supervisor
			// can start a clean instance.
			fail(idx, fmt.Errorf("condition target %s for result %q is neither end nor a step index", target, result))
			return
		}
	}
}

// dispatch builds the step's message and invokes the agent worker. The
// message carries the event channel so tool lifecycle events interleave at
// the right position in the stream.
func (e *Engine) dispatch(ctx context.Context, step Step, idx int, input string, events chan core.Event) (string, error) {
	worker, ok := e.agents.Lookup(step.Agent)
	if !ok {
		return "", fmt.Errorf("agent %s: %w", step.Agent, core.ErrAgentNotRunning)
	}

	msg := &core.Message{
		Input:          input,
		AgentName:      step.Agent,
		JobName:        e.cfg.Name,
		JobDescription: e.cfg.Description,
		StepIndex:      idx,
		StepObjective:  step.Objective,
		Events:         events,
	}

	start := time.Now()

	out, err := worker.Message(ctx, msg)
	if err != nil {
		return "", err
	}

	e.logger.Debug("job.step.done",
		"job_name", e.cfg.Name,
		"step_index", idx,
		"agent", step.Agent,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return out.Result, nil
}

func (e *Engine) setStatus(s Status) {
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
}

func (e *Engine) setStepIndex(i int) {
	e.mu.Lock()
	e.stepIndex = i
	e.mu.Unlock()
}
