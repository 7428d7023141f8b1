package core

import (
	"sync"
	"time"
)

// WorkflowStage is the coarse lifecycle phase of the active domain task.
type WorkflowStage int

const (
	// StageIdle means no workflow has been started yet (or the previous one
	// was reset).
	StageIdle WorkflowStage = iota
	// StageInProgress means a domain workflow identified by WorkflowKind is
	// underway.
	StageInProgress
	// StageCompleted means the active workflow finished; the next turn starts
	// fresh.
	StageCompleted
)

// String returns the string representation of the workflow stage.
func (s WorkflowStage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageInProgress:
		return "in_progress"
	case StageCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Well-known workflow kinds used by the built-in handlers. Policies treat the
// kind as an opaque label except for the stage bonus tables.
const (
	KindBooking = "booking"
	KindSupport = "support"
	KindQuery   = "query"
)

// KeySwitchLocked is the well-known context key a handler sets (bool) while the
// workflow is in a sub-stage that forbids switching away, e.g. a pending
// booking confirmation. Policies honoring it retain the incumbent
// unconditionally.
const KeySwitchLocked = "routing.switch_locked"

// Turn is one completed exchange appended to the conversation history. Turns
// are immutable after append; exit detection reads them for stagnation and
// topic-change analysis.
type Turn struct {
	UserInput       string    `json:"user_input"`
	HandlerResponse string    `json:"handler_response"`
	HandlerName     string    `json:"handler_name"`
	Timestamp       time.Time `json:"timestamp"`
}

// ConversationState is the per-session mutable record driving routing
// decisions. It is exclusively owned by the orchestrator: handlers may mutate
// Context through the instance passed to Process, but ActiveHandler, the turn
// counters and History stay orchestrator-owned.
//
// Contract:
//   - ActiveHandlerTurnCount never exceeds TurnCount
//   - History is append-only
//   - Clone performs deep copies of maps/slices for safe divergence
type ConversationState struct {
	SessionID              string         `json:"session_id"`
	ActiveHandler          string         `json:"active_handler"`
	Stage                  WorkflowStage  `json:"stage"`
	WorkflowKind           string         `json:"workflow_kind"`
	TurnCount              int            `json:"turn_count"`
	ActiveHandlerTurnCount int            `json:"active_handler_turn_count"`
	Context                map[string]any `json:"context"`
	History                []Turn         `json:"history"`
	Created                time.Time      `json:"created"`
	Updated                time.Time      `json:"updated"`
	mu                     sync.RWMutex
}

// NewConversationState creates an idle state for the given session id.
func NewConversationState(sessionID string) *ConversationState {
	now := time.Now()
	return &ConversationState{
		SessionID: sessionID,
		Context:   map[string]any{},
		History:   []Turn{},
		Created:   now,
		Updated:   now,
	}
}

// GetContext returns the value and existence flag for a context key.
func (s *ConversationState) GetContext(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.Context[key]
	return v, ok
}

// SetContext sets a key/value pair in the context map updating the Updated
// timestamp.
func (s *ConversationState) SetContext(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Context[key] = value
	s.Updated = time.Now()
}

// DeleteContext removes a context key.
func (s *ConversationState) DeleteContext(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Context, key)
	s.Updated = time.Now()
}

// SwitchLocked reports whether a handler flagged the current workflow stage as
// switch-forbidden via KeySwitchLocked.
func (s *ConversationState) SwitchLocked() bool {
	v, ok := s.GetContext(KeySwitchLocked)
	if !ok {
		return false
	}
	locked, _ := v.(bool)
	return locked
}

// AppendTurn appends a completed turn to the history.
func (s *ConversationState) AppendTurn(t Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.History = append(s.History, t)
	s.Updated = time.Now()
}

// GetHistory returns a defensive copy of the full turn history.
func (s *ConversationState) GetHistory() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := make([]Turn, len(s.History))
	copy(history, s.History)
	return history
}

// RecentUserInputs returns up to n most recent user inputs, oldest first.
func (s *ConversationState) RecentUserInputs(n int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := len(s.History) - n
	if start < 0 {
		start = 0
	}
	inputs := make([]string, 0, len(s.History)-start)
	for _, t := range s.History[start:] {
		inputs = append(inputs, t.UserInput)
	}
	return inputs
}

// LastUserInput returns the most recent user input or "" for a fresh session.
func (s *ConversationState) LastUserInput() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.History) == 0 {
		return ""
	}
	return s.History[len(s.History)-1].UserInput
}

// SetActiveHandler records a control transfer, resetting the per-handler turn
// counter. A no-op when the handler is already active.
func (s *ConversationState) SetActiveHandler(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ActiveHandler == name {
		return
	}
	s.ActiveHandler = name
	s.ActiveHandlerTurnCount = 0
	s.Updated = time.Now()
}

// IncrementTurn advances both turn counters.
func (s *ConversationState) IncrementTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TurnCount++
	s.ActiveHandlerTurnCount++
	s.Updated = time.Now()
}

// SetStage transitions the workflow stage. Kind is only meaningful for
// StageInProgress and is cleared otherwise.
func (s *ConversationState) SetStage(stage WorkflowStage, kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Stage = stage
	if stage == StageInProgress {
		s.WorkflowKind = kind
	} else {
		s.WorkflowKind = ""
	}
	s.Updated = time.Now()
}

// Clone returns a deep copy of the state safe for independent mutation.
func (s *ConversationState) Clone() *ConversationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &ConversationState{
		SessionID:              s.SessionID,
		ActiveHandler:          s.ActiveHandler,
		Stage:                  s.Stage,
		WorkflowKind:           s.WorkflowKind,
		TurnCount:              s.TurnCount,
		ActiveHandlerTurnCount: s.ActiveHandlerTurnCount,
		Context:                make(map[string]any, len(s.Context)),
		History:                make([]Turn, len(s.History)),
		Created:                s.Created,
		Updated:                s.Updated,
	}
	for k, v := range s.Context {
		clone.Context[k] = v
	}
	copy(clone.History, s.History)
	return clone
}

// CheckInvariants validates the structural invariants of the state. It is used
// by tests and defensively by the orchestrator before committing a turn.
func (s *ConversationState) CheckInvariants() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ActiveHandlerTurnCount > s.TurnCount {
		return ErrInvariantViolation
	}
	if s.ActiveHandler == "" && s.TurnCount > 0 && s.Stage != StageIdle {
		return ErrInvariantViolation
	}
	return nil
}

// StateStore persists conversation states. Get follows create-on-first-use
// semantics: an unknown session id yields a fresh idle state, never an error.
// Implementations return clones so callers can mutate freely and commit via
// Save.
type StateStore interface {
	Get(sessionID string) (*ConversationState, error)
	Create(sessionID string) (*ConversationState, error)
	Save(state *ConversationState) error
	Delete(sessionID string) error
}
