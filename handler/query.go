package handler

import (
	"context"

	"github.com/hupe1980/dialogmesh/core"
	"github.com/hupe1980/dialogmesh/logging"
	"github.com/hupe1980/dialogmesh/model"
)

// queryBaseline is the generalist floor: the query handler is always a
// plausible fallback, so it never scores zero.
const (
	queryBaseline = 0.4
	queryQuestion = 0.6
)

var questionWords = []string{
	"what", "who", "when", "where", "why", "how", "which", "?",
	"was", "wer", "wann", "wo", "warum", "wie", "welche",
}

// Query answers general questions. It is the generalist of the set: no
// workflow, no ownership claims, just a modest baseline score that makes it
// the default destination when nothing specialised fits.
type Query struct {
	BaseHandler
}

// NewQuery constructs the query handler. The completer may be nil, in which
// case a canned answer is returned.
func NewQuery(completer model.Completer, logger logging.Logger) *Query {
	return &Query{
		BaseHandler: NewBaseHandler(
			"query",
			"answers general knowledge questions",
			nil,
			completer,
			logger,
		),
	}
}

// Suitability implements core.Handler.
func (h *Query) Suitability(_ context.Context, input string, _ *core.ConversationState) (float64, error) {
	if containsAny(input, questionWords...) {
		return queryQuestion, nil
	}
	return queryBaseline, nil
}

// Process implements core.Handler.
func (h *Query) Process(ctx context.Context, input string, state *core.ConversationState) (*core.HandlerResponse, error) {
	if h.Completer() == nil {
		return &core.HandlerResponse{
			Message: "I don't have an answer for that right now, but I'm happy to help with bookings or support issues.",
		}, nil
	}

	reply, err := h.Completer().Complete(ctx, model.Request{
		System:  "You are a concise, helpful assistant. Answer the user's question directly.",
		History: state.GetHistory(),
		Prompt:  input,
	})
	if err != nil {
		h.Logger().Warn("query completion failed", "error", err)
		return &core.HandlerResponse{
			Message: "Sorry, I couldn't look that up just now. Please try again in a moment.",
		}, nil
	}
	return &core.HandlerResponse{Message: reply}, nil
}

// Interface compliance (compile-time assertion)
var _ core.Handler = (*Query)(nil)
