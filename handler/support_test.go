package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dialogmesh/core"
	"github.com/hupe1980/dialogmesh/internal/testutil"
)

func TestSupportEscalation(t *testing.T) {
	h := NewSupport(nil, nil)
	state := testutil.NewState("sess-1").Build()
	ctx := context.Background()

	resp, err := h.Process(ctx, "my printer is broken", state)
	require.NoError(t, err)
	assert.Equal(t, core.KindSupport, resp.WorkflowKind)
	assert.True(t, resp.KeepControlHint)

	for _, input := range []string{"it just stops", "restart didn't help", "still nothing"} {
		resp, err = h.Process(ctx, input, state)
		require.NoError(t, err)
		assert.False(t, resp.WorkflowCompleted)
	}

	level, ok := state.GetContext("support.level")
	require.True(t, ok)
	assert.Equal(t, 4, level)
	assert.Contains(t, resp.Message, "escalated")
}

func TestSupportResolutionCompletesWorkflow(t *testing.T) {
	h := NewSupport(nil, nil)
	state := testutil.NewState("sess-1").Build()
	ctx := context.Background()

	_, err := h.Process(ctx, "I have a problem", state)
	require.NoError(t, err)

	resp, err := h.Process(ctx, "never mind, it's resolved", state)
	require.NoError(t, err)
	assert.True(t, resp.WorkflowCompleted)

	_, ok := state.GetContext("support.level")
	assert.False(t, ok, "resolution clears the escalation level")
}

func TestSupportClaimGrowsWithEscalation(t *testing.T) {
	h := NewSupport(nil, nil)
	ctx := context.Background()

	fresh := testutil.NewState("sess-1").Build()
	claim, err := h.Claim(ctx, "anything", fresh)
	require.NoError(t, err)
	assert.False(t, claim.KeepControl)

	escalated := testutil.NewState("sess-2").
		WithContext("support.level", 3).
		Build()
	claim, err = h.Claim(ctx, "anything", escalated)
	require.NoError(t, err)
	assert.True(t, claim.KeepControl)
	assert.Equal(t, 6, claim.Priority)
}

func TestSupportSuitabilityFloorDuringCase(t *testing.T) {
	h := NewSupport(nil, nil)
	state := testutil.NewState("sess-1").
		WithContext("support.level", 1).
		Build()

	score, err := h.Suitability(context.Background(), "it happens after login", state)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, score, 1e-9)
}
