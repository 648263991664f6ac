package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jessedrelick/agens/core"
	"github.com/jessedrelick/agens/logging"
	"github.com/jessedrelick/agens/registry"
	"github.com/jessedrelick/agens/serving"
	"github.com/jessedrelick/agens/tool"
)

// Config holds the static configuration of a named agent.
type Config struct {
	// Name is the unique logical id the agent is addressed by. Required.
	Name string `yaml:"name"`

	// Serving is the logical name of the serving to dispatch through. Required.
	Serving string `yaml:"serving"`

	// Prompt is plain standing-instruction text rendered under the "prompt"
	// prefix. Use Structured instead for section-level control; when both are
	// set the structured sections render first.
	Prompt string `yaml:"prompt,omitempty"`

	// Structured renders the identity, context, constraints, examples and
	// reflection sections individually. Empty fields are omitted entirely.
	Structured *core.Prompt `yaml:"structured,omitempty"`

	// Tool optionally post-processes serving results through the
	// pre/to-args/execute/post pipeline.
	Tool tool.Tool `yaml:"-"`

	// Knowledge is reserved for future retrieval integration. Unused.
	Knowledge string `yaml:"knowledge,omitempty"`
}

// Validate checks the mandatory config fields.
func (c Config) Validate() error {
	if c.Name == "" {
		return errors.New("agent name is required")
	}
	if c.Serving == "" {
		return fmt.Errorf("agent %s: serving is required", c.Name)
	}
	return nil
}

// WorkerOptions customize a Worker.
type WorkerOptions struct {
	// Logger for dispatch diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Worker is the lightweight named process behind one agent. It resolves its
// serving by name at every dispatch, so stopping a serving affects the next
// message rather than messages already in flight.
type Worker struct {
	cfg      Config
	servings *registry.Registry[*serving.Runner]
	logger   logging.Logger
}

// NewWorker constructs a Worker around an already validated config.
func NewWorker(cfg Config, servings *registry.Registry[*serving.Runner], optFns ...func(o *WorkerOptions)) *Worker {
	opts := WorkerOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Worker{cfg: cfg, servings: servings, logger: opts.Logger}
}

// Config returns the agent's static configuration.
func (w *Worker) Config() Config { return w.cfg }

// Message builds the full prompt from the agent's template and the message's
// dynamic fields, dispatches it to the serving, and runs the tool pipeline
// when one is configured. On success the message is returned with Prompt and
// Result populated; tool lifecycle events are emitted to the message's caller
// handle in the order tool_started, tool_raw, tool_result before Message
// returns.
func (w *Worker) Message(ctx context.Context, msg *core.Message) (*core.Message, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	runner, ok := w.servings.Lookup(w.cfg.Serving)
	if !ok {
		return nil, fmt.Errorf("serving %s: %w", w.cfg.Serving, core.ErrServingNotRunning)
	}

	msg.AgentName = w.cfg.Name
	msg.ServingName = w.cfg.Serving

	input := msg.Input
	if w.cfg.Tool != nil {
		input = w.cfg.Tool.Pre(input)
	}

	prompt, err := buildPrompt(w.cfg, msg, input, runner.Config().Prefixes)
	if err != nil {
		return nil, fmt.Errorf("agent %s: build prompt: %w", w.cfg.Name, err)
	}

	if finalize := runner.Config().Finalize; finalize != nil {
		prompt = finalize(prompt)
	}
	msg.Prompt = prompt

	result, err := runner.Run(ctx, msg)
	if err != nil {
		return nil, err
	}
	msg.Result = result

	if w.cfg.Tool != nil {
		msg.Result = w.runTool(ctx, msg, result)
	}

	return msg, nil
}

// runTool drives the to-args/execute/post pipeline and emits the fixed
// tool_started, tool_raw, tool_result event chain.
func (w *Worker) runTool(ctx context.Context, msg *core.Message, result string) string {
	start := time.Now()

	msg.Emit(ctx, core.NewToolStartedEvent(msg.JobName, msg.StepIndex, result))

	var outcome any
	args, err := w.cfg.Tool.ToArgs(result)
	if err == nil {
		outcome, err = w.cfg.Tool.Execute(args)
	}

	raw := renderOutcome(outcome, err)
	msg.Emit(ctx, core.NewToolRawEvent(msg.JobName, msg.StepIndex, raw))

	final := w.cfg.Tool.Post(outcome, err)
	msg.Emit(ctx, core.NewToolResultEvent(msg.JobName, msg.StepIndex, final))

	if err != nil {
		w.logger.Warn("agent.tool.error", "agent", w.cfg.Name, "error", err.Error(), "duration_ms", time.Since(start).Milliseconds())
	} else {
		w.logger.Debug("agent.tool.done", "agent", w.cfg.Name, "duration_ms", time.Since(start).Milliseconds())
	}

	return final
}

func renderOutcome(outcome any, err error) string {
	if err != nil {
		return err.Error()
	}
	if s, ok := outcome.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", outcome)
}
