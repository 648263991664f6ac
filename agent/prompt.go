package agent

import (
	"strings"

	"github.com/jessedrelick/agens/core"
	"github.com/jessedrelick/agens/internal/util"
)

// buildPrompt composes the full prompt in a fixed section order from the
// fields that are actually present: job description, step objective, the
// agent's structured prompt fields, its plain prompt text, tool instructions
// and finally the (pre-processed) input. Each present field renders as a
// heading + description + value block drawn from the effective prefixes;
// absent fields contribute nothing.
//
// The job description and step objective may contain text/template
// placeholders expanded against the message (e.g. {{.StepIndex}}).
func buildPrompt(cfg Config, msg *core.Message, input string, prefixes core.Prefixes) (string, error) {
	state := map[string]any{
		"JobName":   msg.JobName,
		"StepIndex": msg.StepIndex,
		"Input":     input,
	}

	description, err := util.RenderTemplate(msg.JobDescription, state)
	if err != nil {
		return "", err
	}

	objective, err := util.RenderTemplate(msg.StepObjective, state)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	writeSection(&b, prefixes, "description", description)
	writeSection(&b, prefixes, "objective", objective)

	if cfg.Structured != nil {
		writeSection(&b, prefixes, "identity", cfg.Structured.Identity)
		writeSection(&b, prefixes, "context", cfg.Structured.Context)
		writeSection(&b, prefixes, "constraints", cfg.Structured.Constraints)
		writeSection(&b, prefixes, "examples", cfg.Structured.Examples)
		writeSection(&b, prefixes, "reflection", cfg.Structured.Reflection)
	}

	writeSection(&b, prefixes, "prompt", cfg.Prompt)

	if cfg.Tool != nil {
		writeSection(&b, prefixes, "instructions", cfg.Tool.Instructions())
	}

	writeSection(&b, prefixes, "input", input)

	return strings.TrimRight(b.String(), "\n"), nil
}

// writeSection appends one heading + description + value block. Empty values
// produce no output, never an empty section.
func writeSection(b *strings.Builder, prefixes core.Prefixes, field, value string) {
	if value == "" {
		return
	}

	prefix := prefixes.Get(field)

	b.WriteString("## ")
	b.WriteString(prefix.Heading)
	b.WriteString("\n")
	if prefix.Description != "" {
		b.WriteString(prefix.Description)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(value)
	b.WriteString("\n\n")
}
