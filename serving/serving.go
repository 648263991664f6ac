// Package serving abstracts the inference backends a prompt is dispatched to.
// A named Runner owns exactly one Backend; agents address runners by logical
// name through the registry, so stopping a serving only affects the next
// dispatch against it. Two backend shapes ship with the package: request/
// response workers (WorkerFunc, SDK adapters in the openai and anthropic
// subpackages) and the queueing BatchRunner for batched inference models.
package serving

import (
	"context"
	"fmt"
	"time"

	"github.com/jessedrelick/agens/core"
	"github.com/jessedrelick/agens/logging"
)

// Config holds the static configuration of a named serving.
type Config struct {
	// Name is the unique logical id the serving is addressed by.
	Name string `yaml:"name"`

	// Prefixes overrides the default prompt section headings and
	// descriptions for every agent dispatching through this serving.
	Prefixes core.Prefixes `yaml:"prefixes,omitempty"`

	// Finalize maps the fully assembled prompt text to the text actually
	// sent to the backend, e.g. to wrap it in model specific control tokens.
	Finalize func(prompt string) string `yaml:"-"`
}

// Backend executes a single prompt-to-text call. Implementations must be safe
// for concurrent use; the runner applies no serialization of its own.
type Backend interface {
	Run(ctx context.Context, msg *core.Message) (string, error)
}

// WorkerFunc adapts a plain function to the Backend interface. Used for
// HTTP-API-backed or test-stub backends that receive the full Message.
type WorkerFunc func(ctx context.Context, msg *core.Message) (string, error)

// Run implements Backend.
func (f WorkerFunc) Run(ctx context.Context, msg *core.Message) (string, error) {
	return f(ctx, msg)
}

// RunnerOptions customize a Runner.
type RunnerOptions struct {
	// Logger for dispatch diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Runner owns one backend instance under a logical name and executes single
// prompt-to-text calls against it. Runners apply no retries; retries, if
// desired, belong to the backend implementation.
type Runner struct {
	cfg     Config
	backend Backend
	logger  logging.Logger
}

// NewRunner constructs a Runner binding cfg.Name to the given backend.
func NewRunner(cfg Config, backend Backend, optFns ...func(o *RunnerOptions)) *Runner {
	opts := RunnerOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{cfg: cfg, backend: backend, logger: opts.Logger}
}

// Config returns the serving's static configuration.
func (r *Runner) Config() Config { return r.cfg }

// Run submits the message's prompt to the backend and returns the generated
// text. Backend failures are wrapped with the serving name for diagnosis.
func (r *Runner) Run(ctx context.Context, msg *core.Message) (string, error) {
	if r.backend == nil {
		return "", fmt.Errorf("serving %s: %w", r.cfg.Name, core.ErrServingNotRunning)
	}

	start := time.Now()

	r.logger.Debug("serving.run.start", "serving", r.cfg.Name, "job_name", msg.JobName, "step_index", msg.StepIndex)

	text, err := r.backend.Run(ctx, msg)
	if err != nil {
		r.logger.Error("serving.run.error", "serving", r.cfg.Name, "error", err.Error())
		return "", fmt.Errorf("serving %s: %w", r.cfg.Name, err)
	}

	r.logger.Debug("serving.run.done", "serving", r.cfg.Name, "duration_ms", time.Since(start).Milliseconds())

	return text, nil
}
