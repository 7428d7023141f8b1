package testutil

import (
	"context"

	"github.com/hupe1980/dialogmesh/core"
)

// StubHandler is a deterministic core.Handler for tests with fixed scores and
// canned responses.
type StubHandler struct {
	HandlerName  string
	Score        float64
	ScoreErr     error
	Reply        string
	ProcessErr   error
	Completed    bool
	KindStarted  string
	KeepHint     bool
	ProcessCalls int
	ScoreCalls   int
}

// Name implements core.Handler.
func (h *StubHandler) Name() string { return h.HandlerName }

// Description implements core.Handler.
func (h *StubHandler) Description() string { return "stub handler " + h.HandlerName }

// Suitability implements core.Handler.
func (h *StubHandler) Suitability(_ context.Context, _ string, _ *core.ConversationState) (float64, error) {
	h.ScoreCalls++
	if h.ScoreErr != nil {
		return 0, h.ScoreErr
	}
	return h.Score, nil
}

// Process implements core.Handler.
func (h *StubHandler) Process(_ context.Context, input string, _ *core.ConversationState) (*core.HandlerResponse, error) {
	h.ProcessCalls++
	if h.ProcessErr != nil {
		return nil, h.ProcessErr
	}
	reply := h.Reply
	if reply == "" {
		reply = h.HandlerName + " handled: " + input
	}
	return &core.HandlerResponse{
		Message:           reply,
		KeepControlHint:   h.KeepHint,
		WorkflowCompleted: h.Completed,
		WorkflowKind:      h.KindStarted,
	}, nil
}

// ClaimingHandler is a StubHandler that also produces a fixed ownership claim.
type ClaimingHandler struct {
	StubHandler
	ClaimVal *core.OwnershipClaim
	ClaimErr error
}

// Claim implements core.OwnershipHandler.
func (h *ClaimingHandler) Claim(_ context.Context, _ string, _ *core.ConversationState) (*core.OwnershipClaim, error) {
	if h.ClaimErr != nil {
		return nil, h.ClaimErr
	}
	return h.ClaimVal, nil
}

// Interface compliance (compile-time assertions)
var (
	_ core.Handler          = (*StubHandler)(nil)
	_ core.OwnershipHandler = (*ClaimingHandler)(nil)
)
