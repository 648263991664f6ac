// Package agent implements the named worker that turns a step's input into a
// finalized prompt, dispatches it to the agent's serving, and optionally pipes
// the result through the agent's tool pipeline. One Worker exists per
// configured agent; any number of job engines may dispatch through it
// concurrently since a Worker holds no per-call state.
package agent
