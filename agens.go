// Package agens provides a high-level façade over the supervisor and worker
// abstractions for orchestrating multi-step jobs across named agents and
// pluggable inference servings. Most applications interact with this package
// by:
//  1. Creating an Agens via New() (optionally supplying a structured logger)
//  2. Starting servings (SDK-backed, batch, or custom worker backends)
//  3. Starting agents that reference those servings by name
//  4. Starting jobs and running them, observing the ordered event stream
//
// The façade delegates orchestration to supervisor.Supervisor while keeping
// setup and usage ergonomics concise. Defaults are safe for local development
// and testing; production deployments typically supply a structured logger.
package agens

import (
	"context"

	"github.com/jessedrelick/agens/agent"
	"github.com/jessedrelick/agens/core"
	"github.com/jessedrelick/agens/job"
	"github.com/jessedrelick/agens/logging"
	"github.com/jessedrelick/agens/serving"
	"github.com/jessedrelick/agens/supervisor"
)

// Options configures the Agens instance.
type Options struct {
	// Logger shared by all started workers. Defaults to NoOpLogger.
	Logger logging.Logger

	// EventBufferSize sets the channel buffer size for job event streams.
	// Larger buffers reduce blocking but increase memory usage.
	EventBufferSize int
}

// Agens is the high-level façade aggregating the supervisor and registries.
type Agens struct {
	sup *supervisor.Supervisor
}

// New creates a new Agens instance with optional overrides.
func New(optFns ...func(o *Options)) *Agens {
	opts := Options{
		Logger:          logging.NoOpLogger{},
		EventBufferSize: 64,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	sup := supervisor.New(func(o *supervisor.Options) {
		o.Logger = opts.Logger
		o.EventBufferSize = opts.EventBufferSize
	})

	return &Agens{sup: sup}
}

// Supervisor exposes the underlying supervisor for advanced use.
func (a *Agens) Supervisor() *supervisor.Supervisor { return a.sup }

// StartServing registers a named serving backed by the given backend.
func (a *Agens) StartServing(cfg serving.Config, backend serving.Backend) (*serving.Runner, error) {
	return a.sup.StartServing(cfg, backend)
}

// StopServing unregisters the named serving.
func (a *Agens) StopServing(name string) error { return a.sup.StopServing(name) }

// StartAgent registers a named agent worker.
func (a *Agens) StartAgent(cfg agent.Config) (*agent.Worker, error) {
	return a.sup.StartAgent(cfg)
}

// StartAgents registers a batch of agent workers.
func (a *Agens) StartAgents(cfgs []agent.Config) ([]*agent.Worker, error) {
	return a.sup.StartAgents(cfgs)
}

// StopAgent unregisters the named agent.
func (a *Agens) StopAgent(name string) error { return a.sup.StopAgent(name) }

// StartJob creates an engine in init state for the job config.
func (a *Agens) StartJob(cfg job.Config) (*job.Engine, error) {
	return a.sup.StartJob(cfg)
}

// StopJob unregisters the named job.
func (a *Agens) StopJob(name string) error { return a.sup.StopJob(name) }

// Run starts executing the named job asynchronously, returning its event
// channel. The terminal job_ended or job_error event carries the final
// disposition; the channel is closed afterwards.
func (a *Agens) Run(ctx context.Context, name, input string) (<-chan core.Event, error) {
	return a.sup.RunJob(ctx, name, input)
}

// RunSync executes the named job to completion, collecting all emitted
// events. The returned error reflects the terminal event: nil after
// job_ended, the job_error cause otherwise.
func (a *Agens) RunSync(ctx context.Context, name, input string) ([]core.Event, error) {
	eventsCh, err := a.sup.RunJob(ctx, name, input)
	if err != nil {
		return nil, err
	}

	var events []core.Event
	var terminalErr error
	for {
		select {
		case <-ctx.Done():
			return events, ctx.Err()
		case ev, ok := <-eventsCh:
			if !ok {
				return events, terminalErr
			}
			if ev.Type == core.EventJobError {
				terminalErr = ev.Err
			}
			events = append(events, ev)
		}
	}
}

// GetAgentConfig returns the static config of the named agent.
func (a *Agens) GetAgentConfig(name string) (agent.Config, error) {
	return a.sup.GetAgentConfig(name)
}

// GetServingConfig returns the static config of the named serving.
func (a *Agens) GetServingConfig(name string) (serving.Config, error) {
	return a.sup.GetServingConfig(name)
}

// GetJobConfig returns the static config of the named job.
func (a *Agens) GetJobConfig(name string) (job.Config, error) {
	return a.sup.GetJobConfig(name)
}
