// Package testutil provides builders shared by policy and orchestrator tests.
package testutil

import (
	"time"

	"github.com/hupe1980/dialogmesh/core"
)

// StateBuilder accumulates ConversationState fields fluently for tests.
type StateBuilder struct {
	state *core.ConversationState
}

// NewState starts a builder for the given session id.
func NewState(sessionID string) *StateBuilder {
	return &StateBuilder{state: core.NewConversationState(sessionID)}
}

// WithActiveHandler sets the incumbent and per-handler turn count. The total
// turn count is raised to keep the counter invariant intact.
func (b *StateBuilder) WithActiveHandler(name string, handlerTurns int) *StateBuilder {
	b.state.ActiveHandler = name
	b.state.ActiveHandlerTurnCount = handlerTurns
	if b.state.TurnCount < handlerTurns {
		b.state.TurnCount = handlerTurns
	}
	return b
}

// WithTurnCount sets the total turn count.
func (b *StateBuilder) WithTurnCount(n int) *StateBuilder {
	b.state.TurnCount = n
	return b
}

// WithStage sets workflow stage and kind.
func (b *StateBuilder) WithStage(stage core.WorkflowStage, kind string) *StateBuilder {
	b.state.Stage = stage
	if stage == core.StageInProgress {
		b.state.WorkflowKind = kind
	}
	return b
}

// WithContext sets a context key.
func (b *StateBuilder) WithContext(key string, value any) *StateBuilder {
	b.state.Context[key] = value
	return b
}

// WithUserInputs appends one history turn per input, attributed to the
// current active handler.
func (b *StateBuilder) WithUserInputs(inputs ...string) *StateBuilder {
	for _, input := range inputs {
		b.state.History = append(b.state.History, core.Turn{
			UserInput:   input,
			HandlerName: b.state.ActiveHandler,
			Timestamp:   time.Now(),
		})
	}
	return b
}

// Build returns the assembled state.
func (b *StateBuilder) Build() *core.ConversationState { return b.state }
