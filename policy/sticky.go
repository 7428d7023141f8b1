package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/dialogmesh/core"
	"github.com/hupe1980/dialogmesh/exitdetect"
	"github.com/hupe1980/dialogmesh/logging"
)

// StickyOptions configures the sticky policy.
type StickyOptions struct {
	// ExitThreshold is the exit-signal confidence above which stickiness
	// breaks.
	ExitThreshold float64
	// MinSuitability is the floor below which the incumbent is considered
	// objectively unfit regardless of exit signals.
	MinSuitability float64
	// RetainConfidence is reported on sticky retention decisions.
	RetainConfidence float64
	// ScoreTTL bounds the suitability cache; zero disables caching.
	ScoreTTL time.Duration
	Logger   logging.Logger
}

// Sticky retains the incumbent unconditionally unless the exit detector's
// combined signal crosses the exit bar or the incumbent is objectively unfit.
// While sticky it deliberately never compares scores; breaking stickiness
// falls through to an open contest that may well re-select the incumbent.
type Sticky struct {
	detector *exitdetect.Detector
	opts     StickyOptions
	cache    *ScoreCache
}

// NewSticky constructs the sticky policy around an exit detector.
func NewSticky(detector *exitdetect.Detector, optFns ...func(o *StickyOptions)) *Sticky {
	opts := StickyOptions{
		ExitThreshold:    0.6,
		MinSuitability:   0.1,
		RetainConfidence: 0.9,
		Logger:           logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	s := &Sticky{detector: detector, opts: opts}
	if opts.ScoreTTL > 0 {
		s.cache = NewScoreCache(opts.ScoreTTL)
	}
	return s
}

// Name implements core.Policy.
func (s *Sticky) Name() string { return "sticky" }

// Route implements core.Policy.
func (s *Sticky) Route(ctx context.Context, input string, state *core.ConversationState, handlers []core.Handler) (*core.RoutingDecision, error) {
	if len(handlers) == 0 {
		return nil, core.ErrNoHandlerAvailable
	}

	incumbent := findHandler(handlers, state.ActiveHandler)
	if incumbent == nil {
		scores := scoreAll(ctx, input, state, handlers, s.cache, s.opts.Logger)
		return openContest(state, handlers, scores, "no incumbent")
	}

	signal := s.detector.Detect(ctx, input, state)

	incumbentScore, err := incumbent.Suitability(ctx, input, state)
	if err != nil {
		// Per the shared failure semantics a failed evaluation scores 0,
		// which marks the incumbent unfit and re-opens the contest.
		s.opts.Logger.Warn("incumbent suitability failed", "handler", incumbent.Name(), "error", err)
		incumbentScore = 0
	}

	exitDetected := signal.Detected && signal.Confidence > s.opts.ExitThreshold
	unfit := incumbentScore < s.opts.MinSuitability
	if exitDetected || unfit {
		scores := scoreAll(ctx, input, state, handlers, s.cache, s.opts.Logger)
		reason := fmt.Sprintf("stickiness broken (%s, confidence %.2f)", signal.Kind, signal.Confidence)
		if unfit && !exitDetected {
			reason = fmt.Sprintf("incumbent unfit (suitability %.2f)", incumbentScore)
		}
		return openContest(state, handlers, scores, reason)
	}

	return retainDecision(state, s.opts.RetainConfidence,
		fmt.Sprintf("sticky retention (%s, confidence %.2f)", signal.Kind, signal.Confidence),
		map[string]float64{incumbent.Name(): clamp01(incumbentScore)}), nil
}

// Interface compliance (compile-time assertion)
var _ core.Policy = (*Sticky)(nil)
