// Package core provides the foundational domain types shared across Agens. It
// defines the core abstractions for:
//
//   - Messages (transient per-step values carrying input, prompt and result)
//   - Events (immutable progress records streamed to the job caller)
//   - Prompts and Prefixes (structured prompt fields and their section text)
//   - The sentinel errors making up the caller-facing error taxonomy
//
// The package intentionally keeps implementation concerns (engines, workers,
// serving backends) out of scope so that every other package can depend on it
// without cycles.
package core
