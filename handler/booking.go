package handler

import (
	"context"
	"fmt"

	"github.com/hupe1980/dialogmesh/core"
	"github.com/hupe1980/dialogmesh/logging"
	"github.com/hupe1980/dialogmesh/model"
)

// Context keys owned by the booking handler.
const (
	keyBookingStage       = "booking.stage"
	keyBookingDestination = "booking.destination"
	keyBookingDates       = "booking.dates"
)

// Booking workflow stages stored under keyBookingStage.
const (
	bookingStageDestination  = "destination"
	bookingStageDates        = "dates"
	bookingStageConfirmation = "confirmation"
)

// Ownership priorities by booking progress. Confirmation dominates because a
// transfer one step before the financial commitment is the worst possible
// moment to lose the user.
const (
	bookingPriorityActive       = 5
	bookingPriorityConfirmation = 10
)

var bookingKeywords = []string{
	"book", "booking", "flight", "hotel", "travel", "trip",
	"buchen", "buchung", "flug", "fliegen", "reise", "urlaub",
}

// Booking walks the user through a staged travel booking: destination, dates,
// confirmation. The confirmation sub-stage locks routing so no policy can
// pull the conversation away mid-commitment.
type Booking struct {
	BaseHandler
}

// NewBooking constructs the booking handler. The completer may be nil.
func NewBooking(completer model.Completer, logger logging.Logger) *Booking {
	return &Booking{
		BaseHandler: NewBaseHandler(
			"booking",
			"books flights, hotels and trips through a staged workflow",
			bookingKeywords,
			completer,
			logger,
		),
	}
}

// Suitability implements core.Handler.
func (h *Booking) Suitability(ctx context.Context, input string, state *core.ConversationState) (float64, error) {
	score, err := h.ScoreInput(ctx, input)
	if err != nil {
		return 0, err
	}
	// An in-flight booking keeps this handler relevant even when the input
	// itself carries no travel vocabulary ("next tuesday", "yes").
	if stage := h.stage(state); stage != "" && score < 0.7 {
		score = 0.7
	}
	return score, nil
}

// Process implements core.Handler.
func (h *Booking) Process(_ context.Context, input string, state *core.ConversationState) (*core.HandlerResponse, error) {
	switch h.stage(state) {
	case "":
		state.SetContext(keyBookingStage, bookingStageDestination)
		return &core.HandlerResponse{
			Message:         "Happy to help with your trip! Where would you like to go?",
			KeepControlHint: true,
			WorkflowKind:    core.KindBooking,
		}, nil

	case bookingStageDestination:
		state.SetContext(keyBookingDestination, input)
		state.SetContext(keyBookingStage, bookingStageDates)
		return &core.HandlerResponse{
			Message:         fmt.Sprintf("Noted, %s it is. When do you want to travel?", input),
			KeepControlHint: true,
		}, nil

	case bookingStageDates:
		state.SetContext(keyBookingDates, input)
		state.SetContext(keyBookingStage, bookingStageConfirmation)
		state.SetContext(core.KeySwitchLocked, true)
		destination, _ := state.GetContext(keyBookingDestination)
		return &core.HandlerResponse{
			Message: fmt.Sprintf("To confirm: %v, %s. Shall I book it? (yes/no)",
				destination, input),
			KeepControlHint: true,
		}, nil

	case bookingStageConfirmation:
		return h.processConfirmation(input, state), nil

	default:
		// Unknown stage value in context: start over rather than crash.
		h.reset(state)
		return &core.HandlerResponse{
			Message:         "Let's start your booking over. Where would you like to go?",
			KeepControlHint: true,
			WorkflowKind:    core.KindBooking,
		}, nil
	}
}

func (h *Booking) processConfirmation(input string, state *core.ConversationState) *core.HandlerResponse {
	switch {
	case containsAny(input, "yes", "ja", "confirm", "ok", "sure", "passt"):
		destination, _ := state.GetContext(keyBookingDestination)
		h.reset(state)
		return &core.HandlerResponse{
			Message:           fmt.Sprintf("Done! Your trip to %v is booked. Anything else?", destination),
			WorkflowCompleted: true,
		}
	case containsAny(input, "no", "nein", "cancel", "abbrechen"):
		h.reset(state)
		return &core.HandlerResponse{
			Message:           "No problem, I cancelled the booking. Anything else?",
			WorkflowCompleted: true,
		}
	default:
		// Stay locked until the user answers the confirmation question.
		return &core.HandlerResponse{
			Message:         "Please answer yes or no so I can finish the booking.",
			KeepControlHint: true,
		}
	}
}

// Claim implements core.OwnershipHandler.
func (h *Booking) Claim(_ context.Context, input string, state *core.ConversationState) (*core.OwnershipClaim, error) {
	stage := h.stage(state)
	if stage == "" {
		return &core.OwnershipClaim{Reason: "no booking in progress"}, nil
	}

	// Mid-workflow support problems are better served by a handoff than by
	// clinging to the booking script.
	if containsAny(input, "problem", "error", "broken", "fehler", "kaputt") {
		return &core.OwnershipClaim{
			SuggestedSuccessor: "support",
			Confidence:         0.7,
			Reason:             "support issue raised mid-booking",
		}, nil
	}

	if stage == bookingStageConfirmation {
		return &core.OwnershipClaim{
			KeepControl: true,
			Confidence:  0.95,
			Priority:    bookingPriorityConfirmation,
			Reason:      "one step from booking confirmation",
		}, nil
	}
	return &core.OwnershipClaim{
		KeepControl: true,
		Confidence:  0.85,
		Priority:    bookingPriorityActive,
		Reason:      fmt.Sprintf("booking in progress (stage %s)", stage),
	}, nil
}

func (h *Booking) stage(state *core.ConversationState) string {
	v, ok := state.GetContext(keyBookingStage)
	if !ok {
		return ""
	}
	stage, _ := v.(string)
	return stage
}

func (h *Booking) reset(state *core.ConversationState) {
	state.DeleteContext(keyBookingStage)
	state.DeleteContext(keyBookingDestination)
	state.DeleteContext(keyBookingDates)
	state.SetContext(core.KeySwitchLocked, false)
}

// Interface compliance (compile-time assertions)
var (
	_ core.Handler          = (*Booking)(nil)
	_ core.OwnershipHandler = (*Booking)(nil)
)
