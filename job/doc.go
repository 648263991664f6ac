// Package job implements the per-job state machine that sequences steps,
// routes branching conditions on step results, and streams ordered progress
// events to the caller. One Engine exists per started job; it moves from init
// through running to exactly one of complete or error, and a terminal engine
// is never reused (the supervisor replaces it with a fresh instance).
package job
