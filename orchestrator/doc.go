// Package orchestrator drives complete conversation turns.
//
// An Orchestrator owns the turn lifecycle: it loads the session state, asks
// the injected routing policy to pick a handler, lets that handler process the
// input, applies stage transitions, and commits the updated state. The commit
// is atomic: the orchestrator works on a clone of the stored state and saves
// it only when the whole turn succeeded, so a failing handler can never leave
// a session half-updated.
//
// Turns for the same session are serialized through a per-session mutex while
// different sessions proceed concurrently. Routing and processing failures
// degrade to an apology reply instead of an error so that a flaky completion
// service never takes the conversation down.
package orchestrator
