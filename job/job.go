package job

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config holds the static definition of a job: its identity, an optional
// description merged into every step's prompt, and the ordered step list.
// A Config is immutable once passed to the supervisor; one Config backs
// exactly one live Engine at a time.
type Config struct {
	// Name is the unique logical id the job is addressed by. Required.
	Name string `yaml:"name"`

	// Description is optional text merged into every step's prompt.
	Description string `yaml:"description,omitempty"`

	// Steps is the ordered step sequence. May be empty; running a job with
	// no steps fails immediately with a fatal engine error.
	Steps []Step `yaml:"steps"`
}

// Step names the agent to invoke plus optional prompt and branching inputs.
type Step struct {
	// Agent is the logical name of the agent to invoke. Required.
	Agent string `yaml:"agent"`

	// Objective is optional text merged into this step's prompt.
	Objective string `yaml:"objective,omitempty"`

	// Conditions optionally route on the step's result text. A step without
	// conditions advances sequentially, feeding its result to the next step.
	Conditions *Conditions `yaml:"conditions,omitempty"`
}

// Conditions map literal result strings to branch targets. Resolution tries
// an exact match first and falls back to Default only when none exists; a
// missing or invalid fallback is a fatal engine error, not a silent
// completion.
type Conditions struct {
	// Targets maps exact result text to a branch target.
	Targets map[string]Target `yaml:"targets"`

	// Default is the fallback target consulted when no exact match is found.
	Default Target `yaml:"default,omitempty"`
}

// Resolve returns the target for a result, reporting whether it came from an
// exact match. On no exact match the Default is returned, which may be unset.
func (c *Conditions) Resolve(result string) (Target, bool) {
	if t, ok := c.Targets[result]; ok {
		return t, true
	}
	return c.Default, false
}

type targetKind int

const (
	targetUnset targetKind = iota
	targetEnd
	targetGoto
	targetInvalid
)

// Target is a tagged branch destination: the terminal end marker, a jump to a
// step index, or invalid/unset. The zero value is unset; an unset or invalid
// target reached at evaluation time terminates the engine with a fatal error.
type Target struct {
	kind  targetKind
	index int
	raw   string
}

// End returns the terminal completion marker.
func End() Target { return Target{kind: targetEnd} }

// Goto returns a jump to the step at index.
func Goto(index int) Target { return Target{kind: targetGoto, index: index} }

// IsEnd reports whether the target is the terminal marker.
func (t Target) IsEnd() bool { return t.kind == targetEnd }

// IsGoto reports whether the target is a step jump.
func (t Target) IsGoto() bool { return t.kind == targetGoto }

// Index returns the jump destination; meaningful only when IsGoto is true.
func (t Target) Index() int { return t.index }

// String renders the target for error payloads and logs.
func (t Target) String() string {
	switch t.kind {
	case targetEnd:
		return "end"
	case targetGoto:
		return fmt.Sprintf("%d", t.index)
	case targetInvalid:
		return fmt.Sprintf("invalid(%s)", t.raw)
	default:
		return "unset"
	}
}

// UnmarshalYAML accepts an integer step index or the literal "end". Any other
// value parses as an invalid target so misconfiguration surfaces as the
// documented fatal engine error at evaluation time rather than at load time.
func (t *Target) UnmarshalYAML(node *yaml.Node) error {
	var index int
	if err := node.Decode(&index); err == nil {
		*t = Goto(index)
		return nil
	}

	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("condition target must be an integer or \"end\": %w", err)
	}

	if s == "end" {
		*t = End()
		return nil
	}

	*t = Target{kind: targetInvalid, raw: s}
	return nil
}

// Validate checks the mandatory config fields and step agent names.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("job name is required")
	}
	for i, step := range c.Steps {
		if step.Agent == "" {
			return fmt.Errorf("job %s: step %d names no agent", c.Name, i)
		}
	}
	return nil
}
