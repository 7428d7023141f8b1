package policy

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hupe1980/dialogmesh/core"
	"github.com/hupe1980/dialogmesh/logging"
)

// OwnershipOptions configures the ownership policy.
type OwnershipOptions struct {
	// RetainConfidence is the minimum claim confidence for the incumbent's
	// keep-control short circuit.
	RetainConfidence float64
	// SuccessorConfidence is the fixed confidence assigned to a direct
	// transfer to a suggested successor.
	SuccessorConfidence float64
	// ScoreTTL bounds the suitability cache; zero disables caching.
	ScoreTTL time.Duration
	Logger   logging.Logger
}

// Ownership asks the incumbent handler itself whether to retain control.
// Handlers are the best-informed party about their own domain progress (one
// step before a financial confirmation, say), so a self-declared claim
// dominates pure text-similarity suitability except when nobody claims
// ownership.
type Ownership struct {
	opts  OwnershipOptions
	cache *ScoreCache
}

// NewOwnership constructs the ownership policy with default tuning.
func NewOwnership(optFns ...func(o *OwnershipOptions)) *Ownership {
	opts := OwnershipOptions{
		RetainConfidence:    0.5,
		SuccessorConfidence: 0.8,
		Logger:              logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	o := &Ownership{opts: opts}
	if opts.ScoreTTL > 0 {
		o.cache = NewScoreCache(opts.ScoreTTL)
	}
	return o
}

// Name implements core.Policy.
func (o *Ownership) Name() string { return "ownership" }

// Route implements core.Policy.
func (o *Ownership) Route(ctx context.Context, input string, state *core.ConversationState, handlers []core.Handler) (*core.RoutingDecision, error) {
	if len(handlers) == 0 {
		return nil, core.ErrNoHandlerAvailable
	}

	incumbent := findHandler(handlers, state.ActiveHandler)
	if incumbent != nil {
		if decision := o.consultIncumbent(ctx, input, state, handlers, incumbent); decision != nil {
			return decision, nil
		}
	}

	return o.contest(ctx, input, state, handlers)
}

// consultIncumbent asks the incumbent for a claim. A keep-control claim above
// the confidence bar is final for the turn; a relinquishment with a usable
// successor transfers directly. Returns nil when the outcome is an open
// contest.
func (o *Ownership) consultIncumbent(
	ctx context.Context,
	input string,
	state *core.ConversationState,
	handlers []core.Handler,
	incumbent core.Handler,
) *core.RoutingDecision {
	owner, ok := incumbent.(core.OwnershipHandler)
	if !ok {
		return nil
	}

	claim, err := owner.Claim(ctx, input, state)
	if err != nil || claim == nil {
		// Documented fallback: a failed claim means no ownership opinion.
		if err != nil {
			o.opts.Logger.Warn("incumbent claim failed", "handler", incumbent.Name(), "error", err)
		}
		return nil
	}

	if claim.KeepControl && claim.Confidence > o.opts.RetainConfidence {
		return retainDecision(state, claim.Confidence,
			fmt.Sprintf("incumbent kept control: %s", claim.Reason), nil)
	}

	// A relinquishment naming a known successor bypasses the open contest.
	if !claim.KeepControl && claim.SuggestedSuccessor != "" {
		if successor := findHandler(handlers, claim.SuggestedSuccessor); successor != nil {
			return &core.RoutingDecision{
				SelectedHandler: successor.Name(),
				Confidence:      o.opts.SuccessorConfidence,
				Changed:         successor.Name() != state.ActiveHandler,
				PreviousHandler: state.ActiveHandler,
				Reason:          fmt.Sprintf("incumbent handed off to %s: %s", successor.Name(), claim.Reason),
			}
		}
	}

	return nil
}

// ownershipCandidate pairs a handler with its claim (nil for handlers that do
// not support ownership) and raw suitability.
type ownershipCandidate struct {
	name        string
	keepControl bool
	priority    int
	suitability float64
}

// contest queries every handler for suitability and, where supported, an
// ownership claim, then ranks lexicographically: keepControl first,
// descending priority, descending suitability. Priority only breaks ties
// among handlers that want control; it never overrides a handler that
// explicitly does not want it.
func (o *Ownership) contest(ctx context.Context, input string, state *core.ConversationState, handlers []core.Handler) (*core.RoutingDecision, error) {
	scores := scoreAll(ctx, input, state, handlers, o.cache, o.opts.Logger)

	candidates := make([]ownershipCandidate, 0, len(handlers))
	for _, h := range handlers {
		c := ownershipCandidate{name: h.Name(), suitability: scores[h.Name()]}
		if owner, ok := h.(core.OwnershipHandler); ok {
			claim, err := owner.Claim(ctx, input, state)
			if err != nil {
				o.opts.Logger.Warn("claim failed during contest", "handler", h.Name(), "error", err)
			} else if claim != nil {
				c.keepControl = claim.KeepControl
				c.priority = claim.Priority
			}
		}
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].keepControl != candidates[j].keepControl {
			return candidates[i].keepControl
		}
		if candidates[i].priority != candidates[j].priority {
			return candidates[i].priority > candidates[j].priority
		}
		return candidates[i].suitability > candidates[j].suitability
	})

	top := candidates[0]
	return &core.RoutingDecision{
		SelectedHandler: top.name,
		Confidence:      clamp01(top.suitability),
		Changed:         top.name != state.ActiveHandler,
		PreviousHandler: state.ActiveHandler,
		Reason: fmt.Sprintf("ownership contest won by %s (keep=%t priority=%d suitability=%.2f)",
			top.name, top.keepControl, top.priority, top.suitability),
		AlternativeScores: scores,
	}, nil
}

func findHandler(handlers []core.Handler, name string) core.Handler {
	if name == "" {
		return nil
	}
	for _, h := range handlers {
		if h.Name() == name {
			return h
		}
	}
	return nil
}

// Interface compliance (compile-time assertion)
var _ core.Policy = (*Ownership)(nil)
