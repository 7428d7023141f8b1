package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/dialogmesh/core"
	"github.com/hupe1980/dialogmesh/internal/util"
	"github.com/hupe1980/dialogmesh/logging"
	"github.com/hupe1980/dialogmesh/session"
)

// DefaultSuggestAfter is the number of consecutive turns with the same handler
// after which the orchestrator attaches a change-of-handler advisory to the
// result.
const DefaultSuggestAfter = 8

const apologyMessage = "Sorry, something went wrong on my side. Please try again."

// Options configure an Orchestrator.
type Options struct {
	// Store persists conversation state. Defaults to an in-memory store.
	Store core.StateStore

	// Logger receives structured diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger

	// Recorder receives per-turn observability events. Defaults to NoopRecorder.
	Recorder Recorder

	// SuggestAfter is the consecutive-turn count that triggers the advisory.
	// Zero or negative disables it.
	SuggestAfter int
}

// Result is the outcome of one processed turn.
type Result struct {
	// HandlerName is the handler that produced the reply.
	HandlerName string `json:"handler_name"`
	// Response is the handler's reply for the user.
	Response *core.HandlerResponse `json:"response"`
	// Decision is the routing decision behind this turn, nil when routing was
	// skipped because of a failure.
	Decision *core.RoutingDecision `json:"decision,omitempty"`
	// Advisory, when non-empty, suggests that the user may be stuck with one
	// handler for an unusually long stretch.
	Advisory string `json:"advisory,omitempty"`
}

// SessionMetrics aggregates per-session routing counters.
type SessionMetrics struct {
	Turns        int            `json:"turns"`
	Switches     int            `json:"switches"`
	Failures     int            `json:"failures"`
	HandlerTurns map[string]int `json:"handler_turns"`
}

// Orchestrator drives complete conversation turns: it routes via the injected
// policy, lets exactly one handler process the input, and commits the updated
// state atomically. Turns for the same session are serialized; different
// sessions proceed concurrently.
type Orchestrator struct {
	policy   core.Policy
	handlers []core.Handler
	byName   map[string]core.Handler
	store    core.StateStore
	logger   logging.Logger
	recorder Recorder

	suggestAfter int

	mu         sync.Mutex
	sessionMus map[string]*sync.Mutex
	metrics    map[string]*SessionMetrics
}

// New creates an Orchestrator for the given policy and handler set.
func New(policy core.Policy, handlers []core.Handler, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Store:        session.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
		Recorder:     NoopRecorder{},
		SuggestAfter: DefaultSuggestAfter,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	byName := make(map[string]core.Handler, len(handlers))
	for _, h := range handlers {
		byName[h.Name()] = h
	}

	return &Orchestrator{
		policy:       policy,
		handlers:     handlers,
		byName:       byName,
		store:        opts.Store,
		logger:       opts.Logger,
		recorder:     opts.Recorder,
		suggestAfter: opts.SuggestAfter,
		sessionMus:   map[string]*sync.Mutex{},
		metrics:      map[string]*SessionMetrics{},
	}
}

// StartSession allocates a fresh session id. Using it is optional: any
// caller-chosen id passed to ProcessMessage creates its session on first use.
func (o *Orchestrator) StartSession() string {
	return util.NewID()
}

// ProcessMessage runs one full conversation turn for the session. State
// changes commit only when the whole turn succeeds; any routing or processing
// failure leaves the persisted state untouched and yields an apology reply.
func (o *Orchestrator) ProcessMessage(ctx context.Context, sessionID, input string) (*Result, error) {
	// Even the hard failure carries a user-facing reply so callers can always
	// render something.
	if len(o.handlers) == 0 {
		return o.apology(""), fmt.Errorf("orchestrator has no handlers: %w", core.ErrNoHandlerAvailable)
	}

	mu := o.sessionMutex(sessionID)
	mu.Lock()
	defer mu.Unlock()

	state, err := o.store.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	// A completed workflow ends at the turn boundary; the next input starts
	// from a clean slate, with no incumbent carrying retention bonuses over.
	if state.Stage == core.StageCompleted {
		state.SetStage(core.StageIdle, "")
		state.SetActiveHandler("")
	}

	start := time.Now()

	decision, err := o.policy.Route(ctx, input, state, o.handlers)
	if err != nil {
		if errors.Is(err, core.ErrNoHandlerAvailable) {
			return o.apology(""), err
		}
		o.logger.Error("routing failed", "session_id", sessionID, "error", err)
		o.recordFailure(sessionID, "route")
		return o.apology(""), nil
	}

	handler, ok := o.byName[decision.SelectedHandler]
	if !ok {
		o.logger.Error("policy selected unknown handler",
			"session_id", sessionID, "handler", decision.SelectedHandler)
		o.recordFailure(sessionID, "route")
		return o.apology(""), nil
	}

	state.SetActiveHandler(decision.SelectedHandler)
	state.IncrementTurn()

	resp, err := handler.Process(ctx, input, state)
	if err != nil {
		// Discard the mutated clone; the stored state stays at the previous
		// turn boundary.
		o.logger.Error("handler processing failed",
			"session_id", sessionID, "handler", handler.Name(), "error", err)
		o.recordFailure(sessionID, "process")
		return o.apology(handler.Name()), nil
	}

	state.AppendTurn(core.Turn{
		UserInput:       input,
		HandlerResponse: resp.Message,
		HandlerName:     handler.Name(),
		Timestamp:       time.Now(),
	})

	switch {
	case resp.WorkflowCompleted:
		state.SetStage(core.StageCompleted, "")
	case resp.WorkflowKind != "" && state.Stage != core.StageInProgress:
		state.SetStage(core.StageInProgress, resp.WorkflowKind)
	}

	if err := state.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("session %s after turn: %w", sessionID, err)
	}
	if err := o.store.Save(state); err != nil {
		return nil, fmt.Errorf("save session %s: %w", sessionID, err)
	}

	dur := time.Since(start)
	o.recordTurn(sessionID, handler.Name(), decision.Changed)
	o.recorder.RecordTurn(o.policy.Name(), handler.Name(), decision.Changed, dur)
	logging.LogRouteDecision(o.logger, sessionID, o.policy.Name(), decision, dur)

	result := &Result{
		HandlerName: handler.Name(),
		Response:    resp,
		Decision:    decision,
	}
	if o.suggestAfter > 0 && state.ActiveHandlerTurnCount >= o.suggestAfter {
		result.Advisory = fmt.Sprintf(
			"You have been with %s for %d turns. Say e.g. \"done\" to wrap up and switch topics.",
			handler.Name(), state.ActiveHandlerTurnCount,
		)
	}
	return result, nil
}

// GetMetrics returns a copy of the session's counters. Reading metrics never
// mutates them; unknown sessions yield zero counters.
func (o *Orchestrator) GetMetrics(sessionID string) SessionMetrics {
	o.mu.Lock()
	defer o.mu.Unlock()
	m, ok := o.metrics[sessionID]
	if !ok {
		return SessionMetrics{HandlerTurns: map[string]int{}}
	}
	out := SessionMetrics{
		Turns:        m.Turns,
		Switches:     m.Switches,
		Failures:     m.Failures,
		HandlerTurns: make(map[string]int, len(m.HandlerTurns)),
	}
	for k, v := range m.HandlerTurns {
		out.HandlerTurns[k] = v
	}
	return out
}

// ResetSession deletes the session's state and counters.
func (o *Orchestrator) ResetSession(sessionID string) error {
	mu := o.sessionMutex(sessionID)
	mu.Lock()
	defer mu.Unlock()

	if err := o.store.Delete(sessionID); err != nil && !errors.Is(err, core.ErrSessionNotFound) {
		return err
	}
	o.mu.Lock()
	delete(o.metrics, sessionID)
	o.mu.Unlock()
	return nil
}

func (o *Orchestrator) apology(handlerName string) *Result {
	return &Result{
		HandlerName: handlerName,
		Response:    &core.HandlerResponse{Message: apologyMessage},
	}
}

func (o *Orchestrator) sessionMutex(sessionID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	mu, ok := o.sessionMus[sessionID]
	if !ok {
		mu = &sync.Mutex{}
		o.sessionMus[sessionID] = mu
	}
	return mu
}

func (o *Orchestrator) recordTurn(sessionID, handlerName string, changed bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	m := o.sessionMetrics(sessionID)
	m.Turns++
	m.HandlerTurns[handlerName]++
	if changed {
		m.Switches++
	}
}

func (o *Orchestrator) recordFailure(sessionID, kind string) {
	o.mu.Lock()
	m := o.sessionMetrics(sessionID)
	m.Failures++
	o.mu.Unlock()
	o.recorder.RecordFailure(o.policy.Name(), kind)
}

// sessionMetrics must be called with o.mu held.
func (o *Orchestrator) sessionMetrics(sessionID string) *SessionMetrics {
	m, ok := o.metrics[sessionID]
	if !ok {
		m = &SessionMetrics{HandlerTurns: map[string]int{}}
		o.metrics[sessionID] = m
	}
	return m
}
