package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dialogmesh/core"
	"github.com/hupe1980/dialogmesh/internal/testutil"
)

func TestBookingWorkflowProgression(t *testing.T) {
	h := NewBooking(nil, nil)
	state := testutil.NewState("sess-1").Build()
	ctx := context.Background()

	resp, err := h.Process(ctx, "I want to book a trip", state)
	require.NoError(t, err)
	assert.Equal(t, core.KindBooking, resp.WorkflowKind)
	assert.True(t, resp.KeepControlHint)

	resp, err = h.Process(ctx, "Rome", state)
	require.NoError(t, err)
	assert.Contains(t, resp.Message, "Rome")
	assert.False(t, state.SwitchLocked())

	resp, err = h.Process(ctx, "next week", state)
	require.NoError(t, err)
	assert.Contains(t, resp.Message, "confirm")
	assert.True(t, state.SwitchLocked(), "confirmation stage locks routing")

	resp, err = h.Process(ctx, "yes", state)
	require.NoError(t, err)
	assert.True(t, resp.WorkflowCompleted)
	assert.Contains(t, resp.Message, "Rome")
	assert.False(t, state.SwitchLocked(), "completion releases the lock")

	_, ok := state.GetContext("booking.stage")
	assert.False(t, ok, "workflow context is cleared on completion")
}

func TestBookingCancellation(t *testing.T) {
	h := NewBooking(nil, nil)
	state := testutil.NewState("sess-1").Build()
	ctx := context.Background()

	_, err := h.Process(ctx, "book a flight", state)
	require.NoError(t, err)
	_, err = h.Process(ctx, "Berlin", state)
	require.NoError(t, err)
	_, err = h.Process(ctx, "tomorrow", state)
	require.NoError(t, err)

	resp, err := h.Process(ctx, "no, cancel that", state)
	require.NoError(t, err)
	assert.True(t, resp.WorkflowCompleted)
	assert.Contains(t, resp.Message, "cancelled")
	assert.False(t, state.SwitchLocked())
}

func TestBookingConfirmationRepeatsQuestion(t *testing.T) {
	h := NewBooking(nil, nil)
	state := testutil.NewState("sess-1").Build()
	ctx := context.Background()

	_, err := h.Process(ctx, "book a flight", state)
	require.NoError(t, err)
	_, err = h.Process(ctx, "Berlin", state)
	require.NoError(t, err)
	_, err = h.Process(ctx, "tomorrow", state)
	require.NoError(t, err)

	resp, err := h.Process(ctx, "hmm let me think", state)
	require.NoError(t, err)
	assert.False(t, resp.WorkflowCompleted)
	assert.True(t, state.SwitchLocked(), "lock holds until the question is answered")
}

func TestBookingSuitabilityFloorDuringWorkflow(t *testing.T) {
	h := NewBooking(nil, nil)
	state := testutil.NewState("sess-1").
		WithContext("booking.stage", "dates").
		Build()

	score, err := h.Suitability(context.Background(), "next tuesday", state)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, score, 1e-9, "mid-workflow inputs without travel vocabulary stay relevant")
}

func TestBookingClaims(t *testing.T) {
	h := NewBooking(nil, nil)
	ctx := context.Background()

	tests := []struct {
		name      string
		stage     string
		input     string
		keep      bool
		priority  int
		successor string
	}{
		{name: "no workflow", stage: "", input: "hello", keep: false},
		{name: "mid workflow", stage: "dates", input: "next week", keep: true, priority: 5},
		{name: "confirmation", stage: "confirmation", input: "yes", keep: true, priority: 10},
		{name: "support issue hands off", stage: "dates", input: "my app shows an error", keep: false, successor: "support"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder := testutil.NewState("sess-1")
			if tt.stage != "" {
				builder = builder.WithContext("booking.stage", tt.stage)
			}
			state := builder.Build()

			claim, err := h.Claim(ctx, tt.input, state)
			require.NoError(t, err)
			assert.Equal(t, tt.keep, claim.KeepControl)
			assert.Equal(t, tt.priority, claim.Priority)
			assert.Equal(t, tt.successor, claim.SuggestedSuccessor)
		})
	}
}
