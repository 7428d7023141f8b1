package handler

import (
	"context"
	"fmt"

	"github.com/hupe1980/dialogmesh/core"
	"github.com/hupe1980/dialogmesh/logging"
	"github.com/hupe1980/dialogmesh/model"
)

const keySupportLevel = "support.level"

const supportPriorityBase = 3

var supportKeywords = []string{
	"problem", "issue", "error", "broken", "help", "not working",
	"fehler", "kaputt", "defekt", "hilfe", "funktioniert nicht", "beschwerde",
}

// Support troubleshoots user problems. Each unresolved turn escalates an
// internal level which raises its ownership priority, so a drawn-out incident
// is harder to pull away from than a fresh one.
type Support struct {
	BaseHandler
}

// NewSupport constructs the support handler. The completer may be nil.
func NewSupport(completer model.Completer, logger logging.Logger) *Support {
	return &Support{
		BaseHandler: NewBaseHandler(
			"support",
			"troubleshoots problems, errors and complaints",
			supportKeywords,
			completer,
			logger,
		),
	}
}

// Suitability implements core.Handler.
func (h *Support) Suitability(ctx context.Context, input string, state *core.ConversationState) (float64, error) {
	score, err := h.ScoreInput(ctx, input)
	if err != nil {
		return 0, err
	}
	if h.level(state) > 0 && score < 0.7 {
		score = 0.7
	}
	return score, nil
}

// Process implements core.Handler.
func (h *Support) Process(_ context.Context, input string, state *core.ConversationState) (*core.HandlerResponse, error) {
	if containsAny(input, "resolved", "solved", "fixed", "works now", "gelöst", "behoben", "geht wieder") {
		state.DeleteContext(keySupportLevel)
		return &core.HandlerResponse{
			Message:           "Glad to hear it's resolved! Let me know if anything else comes up.",
			WorkflowCompleted: true,
		}, nil
	}

	level := h.level(state) + 1
	state.SetContext(keySupportLevel, level)

	var msg string
	switch {
	case level == 1:
		msg = "Sorry to hear that. Can you describe exactly what happens when the problem occurs?"
	case level <= 3:
		msg = "Thanks, that helps. Have you already tried restarting? If so, what error do you see afterwards?"
	default:
		msg = fmt.Sprintf("I've escalated this to level %d. A specialist will take a closer look; can you share any error codes in the meantime?", level)
	}

	return &core.HandlerResponse{
		Message:         msg,
		KeepControlHint: true,
		WorkflowKind:    core.KindSupport,
	}, nil
}

// Claim implements core.OwnershipHandler.
func (h *Support) Claim(_ context.Context, _ string, state *core.ConversationState) (*core.OwnershipClaim, error) {
	level := h.level(state)
	if level == 0 {
		return &core.OwnershipClaim{Reason: "no open support case"}, nil
	}
	return &core.OwnershipClaim{
		KeepControl: true,
		Confidence:  0.8,
		Priority:    supportPriorityBase + level,
		Reason:      fmt.Sprintf("open support case at escalation level %d", level),
	}, nil
}

func (h *Support) level(state *core.ConversationState) int {
	v, ok := state.GetContext(keySupportLevel)
	if !ok {
		return 0
	}
	level, _ := v.(int)
	return level
}

// Interface compliance (compile-time assertions)
var (
	_ core.Handler          = (*Support)(nil)
	_ core.OwnershipHandler = (*Support)(nil)
)
