package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/dialogmesh/core"
	"github.com/hupe1980/dialogmesh/logging"
)

// ThresholdOptions configures the threshold-adaptive policy. The numeric
// defaults are tuned heuristics, adjustable without code changes.
type ThresholdOptions struct {
	// BaseThreshold is the floor every challenger has to clear.
	BaseThreshold float64
	// PrimaryStageBonus applies while a primary workflow kind is in progress.
	PrimaryStageBonus float64
	// SecondaryStageBonus applies while a secondary workflow kind is in
	// progress.
	SecondaryStageBonus float64
	// TurnWeight and TurnBonusCap grow the bar with incumbent tenure.
	TurnWeight   float64
	TurnBonusCap float64
	// EarlyTurnBonus shields a fresh conversation (turnCount < 2).
	EarlyTurnBonus float64
	// ThresholdCap caps the dynamic threshold.
	ThresholdCap float64
	// PrimaryKinds / SecondaryKinds classify workflow kinds for the stage
	// bonus table.
	PrimaryKinds   []string
	SecondaryKinds []string
	// ScoreTTL bounds the suitability cache; zero disables caching.
	ScoreTTL time.Duration
	Logger   logging.Logger
}

// Threshold keeps the incumbent handler unless a challenger clears a
// workflow- and tenure-dependent bar. It is the most conservative of the
// three policies: the deeper a workflow is, the harder it is to pull the
// conversation away.
type Threshold struct {
	opts  ThresholdOptions
	cache *ScoreCache
}

// NewThreshold constructs the threshold-adaptive policy with default tuning.
func NewThreshold(optFns ...func(o *ThresholdOptions)) *Threshold {
	opts := ThresholdOptions{
		BaseThreshold:       0.6,
		PrimaryStageBonus:   0.2,
		SecondaryStageBonus: 0.15,
		TurnWeight:          0.05,
		TurnBonusCap:        0.2,
		EarlyTurnBonus:      0.1,
		ThresholdCap:        0.95,
		PrimaryKinds:        []string{core.KindBooking},
		SecondaryKinds:      []string{core.KindSupport},
		Logger:              logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	t := &Threshold{opts: opts}
	if opts.ScoreTTL > 0 {
		t.cache = NewScoreCache(opts.ScoreTTL)
	}
	return t
}

// Name implements core.Policy.
func (t *Threshold) Name() string { return "threshold" }

// Route implements core.Policy.
func (t *Threshold) Route(ctx context.Context, input string, state *core.ConversationState, handlers []core.Handler) (*core.RoutingDecision, error) {
	if len(handlers) == 0 {
		return nil, core.ErrNoHandlerAvailable
	}

	scores := scoreAll(ctx, input, state, handlers, t.cache, t.opts.Logger)

	incumbent := state.ActiveHandler
	if incumbent == "" || !hasHandler(handlers, incumbent) {
		return openContest(state, handlers, scores, "no incumbent")
	}

	if state.SwitchLocked() {
		return retainDecision(state, 1.0, "switch forbidden by workflow stage", scores), nil
	}

	bar := t.DynamicThreshold(state)
	adjusted := clamp01(scores[incumbent]) + t.RetentionBonus(state)

	challenger, challengerScore := bestChallenger(handlers, scores, incumbent)
	// Strict comparisons: ties always favor the incumbent.
	if challenger != "" && challengerScore > adjusted && challengerScore > bar {
		return &core.RoutingDecision{
			SelectedHandler: challenger,
			Confidence:      challengerScore,
			Changed:         true,
			PreviousHandler: incumbent,
			Reason: fmt.Sprintf("challenger %.2f beat incumbent %.2f (adjusted) over threshold %.2f",
				challengerScore, adjusted, bar),
			AlternativeScores: scores,
		}, nil
	}

	reason := fmt.Sprintf("incumbent retained: best challenger %.2f below threshold %.2f or adjusted score %.2f",
		challengerScore, bar, adjusted)
	return retainDecision(state, clamp01(adjusted), reason, scores), nil
}

// DynamicThreshold computes the bar a challenger has to clear:
// base + stageBonus + min(cap, activeHandlerTurnCount*weight), capped.
func (t *Threshold) DynamicThreshold(state *core.ConversationState) float64 {
	bar := t.opts.BaseThreshold + t.stageBonus(state)
	tenure := float64(state.ActiveHandlerTurnCount) * t.opts.TurnWeight
	if tenure > t.opts.TurnBonusCap {
		tenure = t.opts.TurnBonusCap
	}
	bar += tenure
	if bar > t.opts.ThresholdCap {
		bar = t.opts.ThresholdCap
	}
	return bar
}

// RetentionBonus is the additive advantage granted to the incumbent's raw
// score: stageBonus + min(cap, turnCount*weight) + earlyTurnBonus for a
// conversation younger than two turns.
func (t *Threshold) RetentionBonus(state *core.ConversationState) float64 {
	bonus := t.stageBonus(state)
	tenure := float64(state.TurnCount) * t.opts.TurnWeight
	if tenure > t.opts.TurnBonusCap {
		tenure = t.opts.TurnBonusCap
	}
	bonus += tenure
	if state.TurnCount < 2 {
		bonus += t.opts.EarlyTurnBonus
	}
	return bonus
}

func (t *Threshold) stageBonus(state *core.ConversationState) float64 {
	if state.Stage != core.StageInProgress {
		return 0
	}
	for _, kind := range t.opts.PrimaryKinds {
		if state.WorkflowKind == kind {
			return t.opts.PrimaryStageBonus
		}
	}
	for _, kind := range t.opts.SecondaryKinds {
		if state.WorkflowKind == kind {
			return t.opts.SecondaryStageBonus
		}
	}
	return 0
}

// bestChallenger returns the top scoring handler other than the incumbent.
func bestChallenger(handlers []core.Handler, scores map[string]float64, incumbent string) (string, float64) {
	best := ""
	bestScore := -1.0
	for _, h := range handlers {
		if h.Name() == incumbent {
			continue
		}
		if score := scores[h.Name()]; score > bestScore {
			best = h.Name()
			bestScore = score
		}
	}
	if best == "" {
		return "", 0
	}
	return best, bestScore
}

func hasHandler(handlers []core.Handler, name string) bool {
	for _, h := range handlers {
		if h.Name() == name {
			return true
		}
	}
	return false
}

// Interface compliance (compile-time assertion)
var _ core.Policy = (*Threshold)(nil)
