package policy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dialogmesh/core"
	"github.com/hupe1980/dialogmesh/internal/testutil"
	"github.com/hupe1980/dialogmesh/logging"
)

func TestScoreCachePutGet(t *testing.T) {
	cache := NewScoreCache(time.Minute)

	_, ok := cache.Get("booking", "book a flight")
	assert.False(t, ok)

	cache.Put("booking", "book a flight", 0.8)
	score, ok := cache.Get("booking", "book a flight")
	require.True(t, ok)
	assert.InDelta(t, 0.8, score, 1e-9)

	// Same input, different handler: separate entry.
	_, ok = cache.Get("support", "book a flight")
	assert.False(t, ok)
}

func TestScoreCacheExpiry(t *testing.T) {
	cache := NewScoreCache(time.Minute)
	now := time.Now()
	cache.now = func() time.Time { return now }

	cache.Put("booking", "book a flight", 0.8)

	now = now.Add(30 * time.Second)
	_, ok := cache.Get("booking", "book a flight")
	assert.True(t, ok)

	now = now.Add(31 * time.Second)
	_, ok = cache.Get("booking", "book a flight")
	assert.False(t, ok, "entries expire by TTL")
}

func TestScoreCacheDisabled(t *testing.T) {
	cache := NewScoreCache(0)
	cache.Put("booking", "book a flight", 0.8)
	_, ok := cache.Get("booking", "book a flight")
	assert.False(t, ok)
}

func TestScoreAllUsesCache(t *testing.T) {
	cache := NewScoreCache(time.Minute)
	h := &testutil.StubHandler{HandlerName: "booking", Score: 0.7}
	state := testutil.NewState("sess-1").Build()

	scores := scoreAll(context.Background(), "book a flight", state, []core.Handler{h}, cache, logging.NoOpLogger{})
	assert.InDelta(t, 0.7, scores["booking"], 1e-9)
	assert.Equal(t, 1, h.ScoreCalls)

	// Second evaluation is served from the cache.
	scores = scoreAll(context.Background(), "book a flight", state, []core.Handler{h}, cache, logging.NoOpLogger{})
	assert.InDelta(t, 0.7, scores["booking"], 1e-9)
	assert.Equal(t, 1, h.ScoreCalls)

	// A different input misses.
	_ = scoreAll(context.Background(), "another input", state, []core.Handler{h}, cache, logging.NoOpLogger{})
	assert.Equal(t, 2, h.ScoreCalls)
}
