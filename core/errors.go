package core

import "errors"

var (
	// ErrNoHandlerAvailable is returned when routing has no selectable
	// handler. This is the only hard failure path of a turn.
	ErrNoHandlerAvailable = errors.New("no handler available")

	// ErrInvariantViolation indicates a ConversationState failed its
	// structural invariant check.
	ErrInvariantViolation = errors.New("conversation state invariant violation")

	// ErrSessionNotFound is returned by store operations that require an
	// existing session (Delete); Get never returns it.
	ErrSessionNotFound = errors.New("session not found")
)
