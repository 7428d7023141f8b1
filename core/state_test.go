package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversationState(t *testing.T) {
	state := NewConversationState("sess-1")

	assert.Equal(t, "sess-1", state.SessionID)
	assert.Equal(t, StageIdle, state.Stage)
	assert.Empty(t, state.ActiveHandler)
	assert.Zero(t, state.TurnCount)
	assert.Zero(t, state.ActiveHandlerTurnCount)
	assert.NoError(t, state.CheckInvariants())
}

func TestConversationStateContext(t *testing.T) {
	state := NewConversationState("sess-1")

	_, ok := state.GetContext("missing")
	assert.False(t, ok)

	state.SetContext("booking.stage", "dates")
	v, ok := state.GetContext("booking.stage")
	require.True(t, ok)
	assert.Equal(t, "dates", v)

	state.DeleteContext("booking.stage")
	_, ok = state.GetContext("booking.stage")
	assert.False(t, ok)
}

func TestConversationStateSwitchLocked(t *testing.T) {
	state := NewConversationState("sess-1")
	assert.False(t, state.SwitchLocked())

	state.SetContext(KeySwitchLocked, true)
	assert.True(t, state.SwitchLocked())

	state.SetContext(KeySwitchLocked, false)
	assert.False(t, state.SwitchLocked())

	// Non-bool values never lock.
	state.SetContext(KeySwitchLocked, "yes")
	assert.False(t, state.SwitchLocked())
}

func TestConversationStateCounters(t *testing.T) {
	state := NewConversationState("sess-1")

	state.SetActiveHandler("booking")
	state.IncrementTurn()
	state.IncrementTurn()
	assert.Equal(t, 2, state.TurnCount)
	assert.Equal(t, 2, state.ActiveHandlerTurnCount)

	// Switching resets only the per-handler counter.
	state.SetActiveHandler("support")
	assert.Equal(t, 2, state.TurnCount)
	assert.Zero(t, state.ActiveHandlerTurnCount)

	// Re-setting the same handler is a no-op.
	state.IncrementTurn()
	state.SetActiveHandler("support")
	assert.Equal(t, 1, state.ActiveHandlerTurnCount)

	assert.NoError(t, state.CheckInvariants())
}

func TestConversationStateHistory(t *testing.T) {
	state := NewConversationState("sess-1")
	assert.Empty(t, state.LastUserInput())

	for _, input := range []string{"one", "two", "three"} {
		state.AppendTurn(Turn{UserInput: input, HandlerName: "query", Timestamp: time.Now()})
	}

	assert.Equal(t, "three", state.LastUserInput())
	assert.Equal(t, []string{"two", "three"}, state.RecentUserInputs(2))
	assert.Equal(t, []string{"one", "two", "three"}, state.RecentUserInputs(10))

	history := state.GetHistory()
	require.Len(t, history, 3)
	history[0].UserInput = "mutated"
	assert.Equal(t, "one", state.GetHistory()[0].UserInput)
}

func TestConversationStateClone(t *testing.T) {
	state := NewConversationState("sess-1")
	state.SetActiveHandler("booking")
	state.IncrementTurn()
	state.SetStage(StageInProgress, KindBooking)
	state.SetContext("booking.stage", "dates")
	state.AppendTurn(Turn{UserInput: "book a flight", HandlerName: "booking"})

	clone := state.Clone()
	require.Equal(t, state.SessionID, clone.SessionID)
	require.Equal(t, state.TurnCount, clone.TurnCount)
	require.Equal(t, state.WorkflowKind, clone.WorkflowKind)

	// Divergence must not leak back.
	clone.SetContext("booking.stage", "confirmation")
	clone.AppendTurn(Turn{UserInput: "next"})
	v, _ := state.GetContext("booking.stage")
	assert.Equal(t, "dates", v)
	assert.Len(t, state.GetHistory(), 1)
}

func TestConversationStateSetStageClearsKind(t *testing.T) {
	state := NewConversationState("sess-1")
	state.SetStage(StageInProgress, KindSupport)
	assert.Equal(t, KindSupport, state.WorkflowKind)

	state.SetStage(StageCompleted, "")
	assert.Equal(t, StageCompleted, state.Stage)
	assert.Empty(t, state.WorkflowKind)
}

func TestCheckInvariantsViolation(t *testing.T) {
	state := NewConversationState("sess-1")
	state.ActiveHandlerTurnCount = 3
	state.TurnCount = 1
	assert.ErrorIs(t, state.CheckInvariants(), ErrInvariantViolation)
}

func TestWorkflowStageString(t *testing.T) {
	assert.Equal(t, "idle", StageIdle.String())
	assert.Equal(t, "in_progress", StageInProgress.String())
	assert.Equal(t, "completed", StageCompleted.String())
}

func TestExitKindString(t *testing.T) {
	assert.Equal(t, "none", ExitNone.String())
	assert.Equal(t, "explicit", ExitExplicit.String())
	assert.Equal(t, "completion", ExitCompletion.String())
	assert.Equal(t, "topic_change", ExitTopicChange.String())
	assert.Equal(t, "stagnation", ExitStagnation.String())
}
