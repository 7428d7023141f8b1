package session

import (
	"sync"

	"github.com/hupe1980/dialogmesh/core"
)

// InMemoryStore is a volatile StateStore implementation keeping conversation
// states in a process local map. It is safe for concurrent access and is the
// literal baseline behavior: unlimited in-memory retention, no expiry. Each
// returned state is cloned so the orchestrator can mutate a working copy and
// commit it atomically via Save.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[string]*core.ConversationState
}

// NewInMemoryStore constructs an empty in-memory state store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]*core.ConversationState)}
}

// Get returns an existing state (clone) or creates a new idle one lazily.
func (s *InMemoryStore) Get(sessionID string) (*core.ConversationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.states[sessionID]; ok {
		return state.Clone(), nil
	}
	return s.createLocked(sessionID).Clone(), nil
}

// Create forces the creation (or overwriting) of a state with the given id.
func (s *InMemoryStore) Create(sessionID string) (*core.ConversationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(sessionID).Clone(), nil
}

// Save stores a clone of the provided state snapshot.
func (s *InMemoryStore) Save(state *core.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.SessionID] = state.Clone()
	return nil
}

// Delete removes a state. Unknown ids yield core.ErrSessionNotFound.
func (s *InMemoryStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.states[sessionID]; !ok {
		return core.ErrSessionNotFound
	}
	delete(s.states, sessionID)
	return nil
}

// Len reports the number of stored sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}

// createLocked allocates and stores a new state; caller must hold the write
// lock.
func (s *InMemoryStore) createLocked(sessionID string) *core.ConversationState {
	state := core.NewConversationState(sessionID)
	s.states[sessionID] = state
	return state
}
