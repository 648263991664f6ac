// Package supervisor hosts the dynamic set of named workers: serving runners,
// agent workers and job engines. It owns one registry per worker kind (names
// are unique per kind, not across kinds) and applies the restart policy that
// replaces a terminal job engine with a fresh init-state instance under the
// same logical name.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jessedrelick/agens/agent"
	"github.com/jessedrelick/agens/core"
	"github.com/jessedrelick/agens/job"
	"github.com/jessedrelick/agens/logging"
	"github.com/jessedrelick/agens/registry"
	"github.com/jessedrelick/agens/serving"
)

// Options customize a Supervisor.
type Options struct {
	// Logger is shared with every started worker. Defaults to NoOpLogger.
	Logger logging.Logger

	// EventBufferSize is passed through to job engines. Defaults to 64.
	EventBufferSize int
}

// Supervisor starts, resolves and stops named workers. All methods are safe
// for concurrent use.
type Supervisor struct {
	logger  logging.Logger
	bufSize int

	servings *registry.Registry[*serving.Runner]
	agents   *registry.Registry[*agent.Worker]
	jobs     *registry.Registry[*job.Engine]

	restartMu sync.Mutex
}

// New constructs a Supervisor with empty registries.
func New(optFns ...func(o *Options)) *Supervisor {
	opts := Options{
		Logger:          logging.NoOpLogger{},
		EventBufferSize: 64,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Supervisor{
		logger:   opts.Logger,
		bufSize:  opts.EventBufferSize,
		servings: registry.New[*serving.Runner](opts.Logger),
		agents:   registry.New[*agent.Worker](opts.Logger),
		jobs:     registry.New[*job.Engine](opts.Logger),
	}
}

// StartServing registers a runner for the named serving. Starting an already
// live name is non-fatal: the existing runner is returned and a warning
// logged.
func (s *Supervisor) StartServing(cfg serving.Config, backend serving.Backend) (*serving.Runner, error) {
	if cfg.Name == "" {
		return nil, errors.New("serving name is required")
	}
	if backend == nil {
		return nil, fmt.Errorf("serving %s: backend is required", cfg.Name)
	}

	runner := serving.NewRunner(cfg, backend, func(o *serving.RunnerOptions) {
		o.Logger = s.logger
	})

	runner, created := s.servings.Register(cfg.Name, runner)
	if created {
		s.logger.Info("supervisor.serving.started", "name", cfg.Name)
	}

	return runner, nil
}

// StopServing unregisters the named serving. Jobs already past their lookup
// are unaffected; the next dispatch against the name fails with
// ErrServingNotRunning.
func (s *Supervisor) StopServing(name string) error {
	if !s.servings.Unregister(name) {
		return fmt.Errorf("serving %s: %w", name, core.ErrServingNotFound)
	}
	s.logger.Info("supervisor.serving.stopped", "name", name)
	return nil
}

// GetServingConfig returns the static config of the named serving.
func (s *Supervisor) GetServingConfig(name string) (serving.Config, error) {
	runner, ok := s.servings.Lookup(name)
	if !ok {
		return serving.Config{}, fmt.Errorf("serving %s: %w", name, core.ErrServingNotFound)
	}
	return runner.Config(), nil
}

// StartAgent registers a worker for the named agent.
func (s *Supervisor) StartAgent(cfg agent.Config) (*agent.Worker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	worker := agent.NewWorker(cfg, s.servings, func(o *agent.WorkerOptions) {
		o.Logger = s.logger
	})

	worker, created := s.agents.Register(cfg.Name, worker)
	if created {
		s.logger.Info("supervisor.agent.started", "name", cfg.Name, "serving", cfg.Serving)
	}

	return worker, nil
}

// StartAgents starts a batch of agents, stopping at the first invalid config.
func (s *Supervisor) StartAgents(cfgs []agent.Config) ([]*agent.Worker, error) {
	workers := make([]*agent.Worker, 0, len(cfgs))
	for _, cfg := range cfgs {
		worker, err := s.StartAgent(cfg)
		if err != nil {
			return workers, err
		}
		workers = append(workers, worker)
	}
	return workers, nil
}

// StopAgent unregisters the named agent. Steps already dispatched complete;
// the next dispatch to the name fails with ErrAgentNotRunning.
func (s *Supervisor) StopAgent(name string) error {
	if !s.agents.Unregister(name) {
		return fmt.Errorf("agent %s: %w", name, core.ErrAgentNotFound)
	}
	s.logger.Info("supervisor.agent.stopped", "name", name)
	return nil
}

// GetAgentConfig returns the static config of the named agent.
func (s *Supervisor) GetAgentConfig(name string) (agent.Config, error) {
	worker, ok := s.agents.Lookup(name)
	if !ok {
		return agent.Config{}, fmt.Errorf("agent %s: %w", name, core.ErrAgentNotFound)
	}
	return worker.Config(), nil
}

// StartJob creates and registers an engine in init state for the config. No
// step executes until RunJob.
func (s *Supervisor) StartJob(cfg job.Config) (*job.Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	engine := s.newEngine(cfg)

	engine, created := s.jobs.Register(cfg.Name, engine)
	if created {
		s.logger.Info("supervisor.job.started", "name", cfg.Name, "steps", len(cfg.Steps))
	}

	return engine, nil
}

// StopJob unregisters the named job. An in-flight run keeps executing until
// its own terminal state; it is simply no longer addressable.
func (s *Supervisor) StopJob(name string) error {
	if !s.jobs.Unregister(name) {
		return fmt.Errorf("job %s: %w", name, core.ErrJobNotFound)
	}
	s.logger.Info("supervisor.job.stopped", "name", name)
	return nil
}

// GetJobConfig returns the static config of the named job.
func (s *Supervisor) GetJobConfig(name string) (job.Config, error) {
	engine, ok := s.jobs.Lookup(name)
	if !ok {
		return job.Config{}, fmt.Errorf("job %s: %w", name, core.ErrJobNotFound)
	}
	return engine.Config(), nil
}

// GetJob returns the live engine registered under name.
func (s *Supervisor) GetJob(name string) (*job.Engine, error) {
	engine, ok := s.jobs.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("job %s: %w", name, core.ErrJobNotFound)
	}
	return engine, nil
}

// RunJob starts executing the named job with the given input, returning the
// event channel for this run. The call returns as soon as the run is
// accepted; callers learn the final disposition from the terminal job_ended
// or job_error event.
//
// Once the run terminates, for any reason, the engine is replaced with a
// fresh init-state instance under the same name: a later RunJob starts over
// at step index 0 with no memory of the prior run.
func (s *Supervisor) RunJob(ctx context.Context, name, input string) (<-chan core.Event, error) {
	engine, ok := s.jobs.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("job %s: %w", name, core.ErrJobNotFound)
	}

	events, err := engine.Run(ctx, input)
	if err != nil {
		return nil, err
	}

	go s.superviseRun(name, engine)

	return events, nil
}

// superviseRun waits for the engine's terminal state and installs a fresh
// replacement, unless the job was stopped or already replaced meanwhile.
func (s *Supervisor) superviseRun(name string, engine *job.Engine) {
	<-engine.Done()

	s.restartMu.Lock()
	defer s.restartMu.Unlock()

	current, ok := s.jobs.Lookup(name)
	if !ok || current != engine {
		return
	}

	s.jobs.Replace(name, s.newEngine(engine.Config()))
	s.logger.Debug("supervisor.job.restarted", "name", name, "status", engine.Status().String())
}

func (s *Supervisor) newEngine(cfg job.Config) *job.Engine {
	return job.NewEngine(cfg, s.agents, func(o *job.EngineOptions) {
		o.Logger = s.logger
		o.EventBufferSize = s.bufSize
	})
}
