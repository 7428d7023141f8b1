package policy

import (
	"context"
	"fmt"

	"github.com/hupe1980/dialogmesh/core"
	"github.com/hupe1980/dialogmesh/logging"
)

// scoreAll evaluates suitability for every handler. A failed evaluation is
// treated as score 0 for that handler only; routing proceeds with the
// remaining scores. When a cache is supplied, fresh entries short-circuit the
// handler call.
func scoreAll(
	ctx context.Context,
	input string,
	state *core.ConversationState,
	handlers []core.Handler,
	cache *ScoreCache,
	logger logging.Logger,
) map[string]float64 {
	scores := make(map[string]float64, len(handlers))
	for _, h := range handlers {
		if cache != nil {
			if score, ok := cache.Get(h.Name(), input); ok {
				scores[h.Name()] = score
				continue
			}
		}
		score, err := h.Suitability(ctx, input, state)
		if err != nil {
			logger.Warn("suitability evaluation failed", "handler", h.Name(), "error", err)
			scores[h.Name()] = 0
			continue
		}
		score = clamp01(score)
		scores[h.Name()] = score
		if cache != nil {
			cache.Put(h.Name(), input, score)
		}
	}
	return scores
}

// bestHandler returns the highest scoring handler name. Ties resolve to the
// earlier handler in registration order so repeated contests stay stable.
func bestHandler(handlers []core.Handler, scores map[string]float64) (string, float64) {
	best := ""
	bestScore := -1.0
	for _, h := range handlers {
		if score := scores[h.Name()]; score > bestScore {
			best = h.Name()
			bestScore = score
		}
	}
	return best, bestScore
}

// openContest builds the decision for the no-incumbent case shared by all
// policies: rank by raw suitability, pick the maximum.
func openContest(
	state *core.ConversationState,
	handlers []core.Handler,
	scores map[string]float64,
	reason string,
) (*core.RoutingDecision, error) {
	if len(handlers) == 0 {
		return nil, core.ErrNoHandlerAvailable
	}
	selected, score := bestHandler(handlers, scores)
	return &core.RoutingDecision{
		SelectedHandler:   selected,
		Confidence:        clamp01(score),
		Changed:           selected != state.ActiveHandler,
		PreviousHandler:   state.ActiveHandler,
		Reason:            fmt.Sprintf("%s: best of %d candidates", reason, len(handlers)),
		AlternativeScores: scores,
	}, nil
}

// retainDecision builds the decision for keeping the incumbent.
func retainDecision(state *core.ConversationState, confidence float64, reason string, scores map[string]float64) *core.RoutingDecision {
	return &core.RoutingDecision{
		SelectedHandler:   state.ActiveHandler,
		Confidence:        clamp01(confidence),
		Changed:           false,
		PreviousHandler:   state.ActiveHandler,
		Reason:            reason,
		AlternativeScores: scores,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
