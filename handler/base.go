package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/dialogmesh/logging"
	"github.com/hupe1980/dialogmesh/model"
)

// FallbackScore is the documented suitability returned when the completion
// service fails or replies unparseably. It keeps a faulty collaborator from
// distorting the routing decision in either direction.
const FallbackScore = 0.5

// BaseHandler bundles the identity helpers and the shared suitability
// scoring: cheap keyword matching first, with an optional completer-backed
// refinement for ambiguous inputs. Embed it in concrete handlers and supply
// Process (and optionally Claim).
type BaseHandler struct {
	name        string
	description string
	keywords    []string
	completer   model.Completer
	logger      logging.Logger
}

// NewBaseHandler constructs a BaseHandler. The completer may be nil, in which
// case scoring is keyword-only.
func NewBaseHandler(name, description string, keywords []string, completer model.Completer, logger logging.Logger) BaseHandler {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return BaseHandler{
		name:        name,
		description: description,
		keywords:    keywords,
		completer:   completer,
		logger:      logger,
	}
}

// Name returns the handler's name.
func (b *BaseHandler) Name() string { return b.name }

// Description returns a detailed description of the handler's purpose.
func (b *BaseHandler) Description() string { return b.description }

// Completer returns the configured completion service (may be nil).
func (b *BaseHandler) Completer() model.Completer { return b.completer }

// Logger returns the configured logger.
func (b *BaseHandler) Logger() logging.Logger { return b.logger }

// KeywordScore maps the number of matched domain keywords to a coarse score.
// It is deliberately cheap: it runs for every handler on every turn.
func (b *BaseHandler) KeywordScore(input string) float64 {
	normalized := strings.ToLower(input)
	matches := 0
	for _, kw := range b.keywords {
		if strings.Contains(normalized, kw) {
			matches++
		}
	}
	switch {
	case matches == 0:
		return 0
	case matches == 1:
		return 0.6
	case matches == 2:
		return 0.8
	default:
		return 0.9
	}
}

// ScoreInput is the shared suitability implementation: decisive keyword
// evidence short-circuits; ambiguous inputs are rated by the completion
// service. A failed or unparseable completion yields FallbackScore.
func (b *BaseHandler) ScoreInput(ctx context.Context, input string) (float64, error) {
	score := b.KeywordScore(input)
	if b.completer == nil || score >= 0.6 {
		return score, nil
	}

	prompt := fmt.Sprintf(
		"You dispatch messages to %s (%s).\nUser message: %q\n"+
			"Reply with a single integer 0-100 rating how well this handler fits the message.",
		b.name, b.description, input,
	)
	reply, err := b.completer.Complete(ctx, model.Request{Prompt: prompt})
	if err != nil {
		b.logger.Warn("suitability completion failed", "handler", b.name, "error", err)
		return FallbackScore, nil
	}
	rated, ok := parseRating(reply)
	if !ok {
		b.logger.Debug("unparseable suitability reply", "handler", b.name, "reply", reply)
		return FallbackScore, nil
	}
	if score > rated {
		return score, nil
	}
	return rated, nil
}

// parseRating extracts a 0-100 integer rating from a model reply and scales
// it to [0,1].
func parseRating(reply string) (float64, bool) {
	fields := strings.FieldsFunc(strings.TrimSpace(reply), func(r rune) bool {
		return r < '0' || r > '9'
	})
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 || n > 100 {
		return 0, false
	}
	return float64(n) / 100, true
}

func containsAny(input string, words ...string) bool {
	normalized := strings.ToLower(input)
	for _, w := range words {
		if strings.Contains(normalized, w) {
			return true
		}
	}
	return false
}
