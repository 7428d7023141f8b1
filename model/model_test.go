package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertion)
var _ Completer = (*MockCompleter)(nil)

func TestMockCompleterCannedReplies(t *testing.T) {
	m := NewMockCompleter()
	m.AddReply("topic change", "changed|0.9|weather")
	m.AddReply("rate", "80")

	reply, err := m.Complete(context.Background(), Request{Prompt: "judge the topic change"})
	require.NoError(t, err)
	assert.Equal(t, "changed|0.9|weather", reply)

	reply, err = m.Complete(context.Background(), Request{Prompt: "rate this input"})
	require.NoError(t, err)
	assert.Equal(t, "80", reply)

	assert.Equal(t, 2, m.Calls)
}

func TestMockCompleterDefault(t *testing.T) {
	m := NewMockCompleter()
	reply, err := m.Complete(context.Background(), Request{Prompt: "anything"})
	require.NoError(t, err)
	assert.Contains(t, reply, "anything")

	m.Default = "fixed"
	reply, err = m.Complete(context.Background(), Request{Prompt: "anything"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", reply)
}

func TestMockCompleterFailure(t *testing.T) {
	m := NewMockCompleter()
	m.Err = errors.New("network down")

	_, err := m.Complete(context.Background(), Request{Prompt: "anything"})
	assert.Error(t, err)
}
