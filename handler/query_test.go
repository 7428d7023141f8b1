package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dialogmesh/internal/testutil"
	"github.com/hupe1980/dialogmesh/model"
)

func TestQuerySuitability(t *testing.T) {
	h := NewQuery(nil, nil)
	state := testutil.NewState("sess-1").Build()
	ctx := context.Background()

	score, err := h.Suitability(ctx, "tell me something", state)
	require.NoError(t, err)
	assert.InDelta(t, queryBaseline, score, 1e-9, "generalist baseline, never zero")

	score, err = h.Suitability(ctx, "what is the capital of France?", state)
	require.NoError(t, err)
	assert.InDelta(t, queryQuestion, score, 1e-9)
}

func TestQueryAnswersViaCompleter(t *testing.T) {
	completer := model.NewMockCompleter()
	completer.AddReply("capital of France", "Paris.")
	h := NewQuery(completer, nil)
	state := testutil.NewState("sess-1").Build()

	resp, err := h.Process(context.Background(), "what is the capital of France?", state)
	require.NoError(t, err)
	assert.Equal(t, "Paris.", resp.Message)
	assert.False(t, resp.KeepControlHint, "the generalist never asks to keep control")
}

func TestQueryCompleterFailureYieldsApology(t *testing.T) {
	completer := model.NewMockCompleter()
	completer.Err = errors.New("rate limited")
	h := NewQuery(completer, nil)
	state := testutil.NewState("sess-1").Build()

	resp, err := h.Process(context.Background(), "what time is it?", state)
	require.NoError(t, err, "completer failures degrade to a canned answer")
	assert.Contains(t, resp.Message, "try again")
}

func TestQueryWithoutCompleter(t *testing.T) {
	h := NewQuery(nil, nil)
	state := testutil.NewState("sess-1").Build()

	resp, err := h.Process(context.Background(), "what is Go?", state)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Message)
}
