package core

// Prompt is the structured form of an agent's prompt. Each field is optional;
// fields left empty contribute nothing to the rendered prompt, never an empty
// section.
type Prompt struct {
	Identity    string `yaml:"identity,omitempty" json:"identity,omitempty"`
	Context     string `yaml:"context,omitempty" json:"context,omitempty"`
	Constraints string `yaml:"constraints,omitempty" json:"constraints,omitempty"`
	Examples    string `yaml:"examples,omitempty" json:"examples,omitempty"`
	Reflection  string `yaml:"reflection,omitempty" json:"reflection,omitempty"`
}

// Empty reports whether no field of the prompt is set.
func (p Prompt) Empty() bool {
	return p == Prompt{}
}

// Prefix is the heading and description text rendered above a prompt section.
type Prefix struct {
	Heading     string `yaml:"heading" json:"heading"`
	Description string `yaml:"description" json:"description"`
}

// Prefixes maps prompt field names to the section text used when rendering
// them. Keys match the field names used across Prompt, Step and Job
// ("identity", "context", ..., "objective", "description", "input", "prompt",
// "instructions"). A serving may override these wholesale via its config.
type Prefixes map[string]Prefix

// DefaultPrefixes returns the built-in section headings and descriptions.
func DefaultPrefixes() Prefixes {
	return Prefixes{
		"description": {
			Heading:     "Description",
			Description: "The purpose of the job this agent is taking part in.",
		},
		"objective": {
			Heading:     "Objective",
			Description: "What this step of the job is trying to achieve.",
		},
		"identity": {
			Heading:     "Identity",
			Description: "Who the agent is and the role it plays.",
		},
		"context": {
			Heading:     "Context",
			Description: "Background knowledge relevant to the task.",
		},
		"constraints": {
			Heading:     "Constraints",
			Description: "Rules the agent must follow when responding.",
		},
		"examples": {
			Heading:     "Examples",
			Description: "Sample inputs and the responses they should produce.",
		},
		"reflection": {
			Heading:     "Reflection",
			Description: "How the agent should check its work before answering.",
		},
		"prompt": {
			Heading:     "Prompt",
			Description: "Standing instructions for the agent.",
		},
		"instructions": {
			Heading:     "Instructions",
			Description: "How to format responses for the configured tool.",
		},
		"input": {
			Heading:     "Input",
			Description: "The text to act on.",
		},
	}
}

// Get returns the prefix for a field, falling back to the built-in defaults
// when the receiver is nil or lacks the key.
func (p Prefixes) Get(field string) Prefix {
	if p != nil {
		if pre, ok := p[field]; ok {
			return pre
		}
	}
	return DefaultPrefixes()[field]
}
