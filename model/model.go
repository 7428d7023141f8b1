package model

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/dialogmesh/core"
)

// Request captures the normalized completion input produced by policies and
// handlers. History is the filtered conversational context; Prompt is the
// current user-facing or classification prompt.
type Request struct {
	System  string      `json:"system"`
	History []core.Turn `json:"history,omitempty"`
	Prompt  string      `json:"prompt"`
}

// Info contains metadata about a completer implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Completer is the minimal interface over the external text-completion
// collaborator. Implementations may be slow and may fail; callers treat a
// failure or an unparseable reply as their documented fallback, never as a
// crash.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)

	// Info returns information about the completer implementation.
	Info() Info
}

// MockCompleter is a lightweight in-memory Completer for tests & examples.
// Replies are matched by prompt substring in registration order; unmatched
// prompts get a generic echo. Err, when set, makes every call fail, which is
// how the fallback paths are exercised in tests.
type MockCompleter struct {
	mu      sync.Mutex
	rules   []mockRule
	Err     error
	Calls   int
	Default string
}

type mockRule struct {
	substr string
	reply  string
}

// NewMockCompleter constructs an empty MockCompleter.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// AddReply registers a canned reply for prompts containing substr.
func (m *MockCompleter) AddReply(substr, reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{substr: substr, reply: reply})
}

// Complete implements Completer.
func (m *MockCompleter) Complete(_ context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	for _, r := range m.rules {
		if strings.Contains(req.Prompt, r.substr) {
			return r.reply, nil
		}
	}
	if m.Default != "" {
		return m.Default, nil
	}
	return fmt.Sprintf("Mock reply to: %s", req.Prompt), nil
}

// Info implements Completer.
func (m *MockCompleter) Info() Info { return Info{Name: "mock", Provider: "mock"} }
