// Package config loads a YAML manifest of servings, agents and jobs and
// applies it to a supervisor. Backends and tools are code, not data: the
// manifest references them by name and the caller supplies the
// implementations at apply time.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jessedrelick/agens/agent"
	"github.com/jessedrelick/agens/job"
	"github.com/jessedrelick/agens/serving"
	"github.com/jessedrelick/agens/supervisor"
	"github.com/jessedrelick/agens/tool"
)

// ServingSpec pairs a serving config with the name of the backend
// implementation to bind it to.
type ServingSpec struct {
	serving.Config `yaml:",inline"`

	// Backend keys into the backends map passed to Apply.
	Backend string `yaml:"backend"`
}

// AgentSpec pairs an agent config with the name of an optional tool
// implementation.
type AgentSpec struct {
	agent.Config `yaml:",inline"`

	// ToolName keys into the tools map passed to Apply. Empty means no tool.
	ToolName string `yaml:"tool,omitempty"`
}

// Manifest is the root of the YAML document.
type Manifest struct {
	Servings []ServingSpec `yaml:"servings"`
	Agents   []AgentSpec   `yaml:"agents"`
	Jobs     []job.Config  `yaml:"jobs"`
}

// Parse decodes a manifest from YAML content.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Apply starts every serving, agent and job in the manifest on the
// supervisor, in that order so references resolve naturally. Backends and
// tools are looked up by the names used in the manifest; a dangling
// reference aborts the apply.
func (m *Manifest) Apply(
	sup *supervisor.Supervisor,
	backends map[string]serving.Backend,
	tools map[string]tool.Tool,
) error {
	for _, spec := range m.Servings {
		backend, ok := backends[spec.Backend]
		if !ok {
			return fmt.Errorf("serving %s: unknown backend %q", spec.Name, spec.Backend)
		}
		if _, err := sup.StartServing(spec.Config, backend); err != nil {
			return fmt.Errorf("start serving %s: %w", spec.Name, err)
		}
	}

	for _, spec := range m.Agents {
		cfg := spec.Config
		if spec.ToolName != "" {
			t, ok := tools[spec.ToolName]
			if !ok {
				return fmt.Errorf("agent %s: unknown tool %q", cfg.Name, spec.ToolName)
			}
			cfg.Tool = t
		}
		if _, err := sup.StartAgent(cfg); err != nil {
			return fmt.Errorf("start agent %s: %w", cfg.Name, err)
		}
	}

	for _, cfg := range m.Jobs {
		if _, err := sup.StartJob(cfg); err != nil {
			return fmt.Errorf("start job %s: %w", cfg.Name, err)
		}
	}

	return nil
}
