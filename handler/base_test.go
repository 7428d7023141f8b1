package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dialogmesh/model"
)

func TestKeywordScoreBuckets(t *testing.T) {
	b := NewBaseHandler("booking", "", []string{"flight", "hotel", "travel"}, nil, nil)

	assert.Zero(t, b.KeywordScore("hello there"))
	assert.InDelta(t, 0.6, b.KeywordScore("I need a flight"), 1e-9)
	assert.InDelta(t, 0.8, b.KeywordScore("a flight and a hotel"), 1e-9)
	assert.InDelta(t, 0.9, b.KeywordScore("flight, hotel and travel insurance"), 1e-9)
}

func TestScoreInputKeywordShortCircuit(t *testing.T) {
	completer := model.NewMockCompleter()
	b := NewBaseHandler("booking", "", []string{"flight"}, completer, nil)

	score, err := b.ScoreInput(context.Background(), "book me a flight")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, score, 1e-9)
	assert.Zero(t, completer.Calls, "decisive keyword evidence skips the completer")
}

func TestScoreInputCompleterRating(t *testing.T) {
	completer := model.NewMockCompleter()
	completer.AddReply("somewhere warm", "85")
	b := NewBaseHandler("booking", "books trips", []string{"flight"}, completer, nil)

	score, err := b.ScoreInput(context.Background(), "I want to go somewhere warm")
	require.NoError(t, err)
	assert.InDelta(t, 0.85, score, 1e-9)
}

func TestScoreInputCompleterFailureFallsBack(t *testing.T) {
	completer := model.NewMockCompleter()
	completer.Err = errors.New("boom")
	b := NewBaseHandler("booking", "", []string{"flight"}, completer, nil)

	score, err := b.ScoreInput(context.Background(), "something ambiguous")
	require.NoError(t, err, "completer failures never surface as errors")
	assert.InDelta(t, FallbackScore, score, 1e-9)
}

func TestScoreInputUnparseableReplyFallsBack(t *testing.T) {
	completer := model.NewMockCompleter()
	completer.Default = "I'd say it fits quite well!"
	b := NewBaseHandler("booking", "", []string{"flight"}, completer, nil)

	score, err := b.ScoreInput(context.Background(), "something ambiguous")
	require.NoError(t, err)
	assert.InDelta(t, FallbackScore, score, 1e-9)
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		reply string
		want  float64
		ok    bool
	}{
		{"85", 0.85, true},
		{"  42  ", 0.42, true},
		{"Rating: 70", 0.7, true},
		{"0", 0, true},
		{"100", 1, true},
		{"101", 0, false},
		{"none", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseRating(tt.reply)
		assert.Equal(t, tt.ok, ok, "reply %q", tt.reply)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, "reply %q", tt.reply)
		}
	}
}
