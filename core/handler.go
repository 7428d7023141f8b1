package core

import "context"

// HandlerResponse is the result of a handler processing one turn.
type HandlerResponse struct {
	// Message is the user-visible reply.
	Message string `json:"message"`
	// KeepControlHint is the handler's opinion on whether it should retain
	// control. Only policies that ask for it act on it.
	KeepControlHint bool `json:"keep_control_hint"`
	// WorkflowCompleted marks the active workflow as finished this turn.
	WorkflowCompleted bool `json:"workflow_completed"`
	// WorkflowKind, when non-empty, requests a transition into
	// StageInProgress for that kind. Ignored while a workflow is already in
	// progress.
	WorkflowKind string `json:"workflow_kind,omitempty"`
	// Metadata carries free-form observability data.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Handler is a specialized responder competing for control of the
// conversation.
//
// Suitability is a best-effort estimate in [0,1]; it may call the completion
// service and is not guaranteed stable between calls with identical input.
// It must be cheap enough (or cached) to evaluate for every handler every
// turn and must not mutate state. On completion-service failure it fails soft
// by returning the documented fallback of 0.5 instead of an error.
//
// Process produces the reply for the selected handler. It is called exactly
// once per turn and only for the selected handler. It may mutate
// state.Context and request stage transitions through the response, but must
// not touch ActiveHandler, the turn counters or History.
type Handler interface {
	Name() string
	Description() string
	Suitability(ctx context.Context, input string, state *ConversationState) (float64, error)
	Process(ctx context.Context, input string, state *ConversationState) (*HandlerResponse, error)
}

// OwnershipHandler is implemented by handlers that can self-assess whether
// they should retain control. Handlers without it simply never claim
// ownership.
type OwnershipHandler interface {
	Handler
	Claim(ctx context.Context, input string, state *ConversationState) (*OwnershipClaim, error)
}

// Policy decides, per turn, which handler processes the next message.
// Implementations must be safe for concurrent use across sessions; all
// per-session mutable data lives in the ConversationState.
type Policy interface {
	Name() string
	Route(ctx context.Context, input string, state *ConversationState, handlers []Handler) (*RoutingDecision, error)
}
