// Package dialogmesh provides a high-level façade over the routing core
// (policies, handlers, sessions & logging) enabling rapid construction of
// multi-handler conversation systems. Most applications interact with this
// package by:
//  1. Creating a DialogMesh via New() with their handler set (optionally
//     overriding the default policy and in-memory services)
//  2. Starting sessions (StartSession) or using caller-chosen session ids
//  3. Processing user messages turn by turn (ProcessMessage)
//
// The façade delegates turn execution to orchestrator.Orchestrator while
// keeping setup and usage ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a durable
// state store, a structured logger and a metrics recorder.
package dialogmesh

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/dialogmesh/config"
	"github.com/hupe1980/dialogmesh/core"
	"github.com/hupe1980/dialogmesh/exitdetect"
	"github.com/hupe1980/dialogmesh/handler"
	"github.com/hupe1980/dialogmesh/logging"
	"github.com/hupe1980/dialogmesh/model"
	"github.com/hupe1980/dialogmesh/model/anthropic"
	"github.com/hupe1980/dialogmesh/model/openai"
	"github.com/hupe1980/dialogmesh/orchestrator"
	"github.com/hupe1980/dialogmesh/policy"
	"github.com/hupe1980/dialogmesh/session"
)

// Options configures the DialogMesh instance.
type Options struct {
	// Policy decides per turn which handler processes the message. Defaults
	// to the threshold policy.
	Policy core.Policy

	// Store persists conversation state (defaults to in-memory).
	Store core.StateStore

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger

	// Recorder receives per-turn observability events (defaults to NoOp).
	Recorder orchestrator.Recorder

	// SuggestAfter is the consecutive-turn count that triggers the
	// change-of-handler advisory.
	SuggestAfter int
}

// DialogMesh is the high-level façade aggregating the orchestrator and its
// services.
type DialogMesh struct {
	opts Options
	orch *orchestrator.Orchestrator
}

// New creates a new DialogMesh instance for the given handler set with
// optional overrides. Any unset service is initialized with an in-memory or
// no-op implementation.
func New(handlers []core.Handler, optFns ...func(o *Options)) *DialogMesh {
	opts := Options{
		Policy:       policy.NewThreshold(),
		Store:        session.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
		Recorder:     orchestrator.NoopRecorder{},
		SuggestAfter: orchestrator.DefaultSuggestAfter,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	orch := orchestrator.New(opts.Policy, handlers, func(o *orchestrator.Options) {
		o.Store = opts.Store
		o.Logger = opts.Logger
		o.Recorder = opts.Recorder
		o.SuggestAfter = opts.SuggestAfter
	})

	return &DialogMesh{opts: opts, orch: orch}
}

// NewFromConfig builds a batteries-included DialogMesh from a configuration
// document: completion service per [model], routing policy per [router] and a
// structured logger per [logging], with the built-in booking, support and
// query handlers.
func NewFromConfig(cfg *config.Config, optFns ...func(o *Options)) (*DialogMesh, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	completer, err := NewCompleter(cfg.Model)
	if err != nil {
		return nil, err
	}

	logger := logging.New(&logging.Config{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Format: cfg.Logging.Format,
	})

	pol, err := NewPolicy(cfg.Router, completer, logger)
	if err != nil {
		return nil, err
	}

	handlers := []core.Handler{
		handler.NewBooking(completer, logger),
		handler.NewSupport(completer, logger),
		handler.NewQuery(completer, logger),
	}

	return New(handlers, func(o *Options) {
		o.Policy = pol
		o.Logger = logger
		o.SuggestAfter = cfg.Router.SuggestAfter
		for _, fn := range optFns {
			fn(o)
		}
	}), nil
}

// NewCompleter constructs the completion service described by a model config.
func NewCompleter(cfg config.ModelConfig) (model.Completer, error) {
	switch cfg.Provider {
	case "openai":
		return openai.New(func(o *openai.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
			o.APIKey = cfg.APIKey
		}), nil
	case "anthropic":
		return anthropic.New(func(o *anthropic.Options) {
			if cfg.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Name)
			}
			o.APIKey = cfg.APIKey
		}), nil
	case "mock", "":
		return model.NewMockCompleter(), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

// NewPolicy constructs the routing policy described by a router config.
func NewPolicy(cfg config.RouterConfig, completer model.Completer, logger logging.Logger) (core.Policy, error) {
	switch cfg.Policy {
	case "threshold", "":
		return policy.NewThreshold(func(o *policy.ThresholdOptions) {
			if cfg.BaseThreshold > 0 {
				o.BaseThreshold = cfg.BaseThreshold
			}
			o.ScoreTTL = cfg.ScoreTTL.Duration()
			o.Logger = logger
		}), nil
	case "ownership":
		return policy.NewOwnership(func(o *policy.OwnershipOptions) {
			o.Logger = logger
		}), nil
	case "sticky":
		detector := exitdetect.New(completer, func(o *exitdetect.Options) {
			o.Logger = logger
		})
		return policy.NewSticky(detector, func(o *policy.StickyOptions) {
			if cfg.ExitThreshold > 0 {
				o.ExitThreshold = cfg.ExitThreshold
			}
			o.Logger = logger
		}), nil
	default:
		return nil, fmt.Errorf("unknown router policy %q", cfg.Policy)
	}
}

// StartSession allocates a fresh session id.
func (m *DialogMesh) StartSession() string { return m.orch.StartSession() }

// ProcessMessage runs one full conversation turn for the session.
func (m *DialogMesh) ProcessMessage(ctx context.Context, sessionID, input string) (*orchestrator.Result, error) {
	return m.orch.ProcessMessage(ctx, sessionID, input)
}

// GetMetrics returns a copy of the session's routing counters.
func (m *DialogMesh) GetMetrics(sessionID string) orchestrator.SessionMetrics {
	return m.orch.GetMetrics(sessionID)
}

// ResetSession deletes the session's state and counters.
func (m *DialogMesh) ResetSession(sessionID string) error {
	return m.orch.ResetSession(sessionID)
}
