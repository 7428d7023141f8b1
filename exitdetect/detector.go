package exitdetect

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/dialogmesh/core"
	"github.com/hupe1980/dialogmesh/logging"
	"github.com/hupe1980/dialogmesh/model"
)

// Default detection confidences. First match wins; the numbers are tuned
// heuristics, not load-bearing precision requirements.
const (
	ConfidenceExplicit    = 0.95
	ConfidenceCompletion  = 0.8
	ConfidenceTopicChange = 0.7
	ConfidenceContextual  = 0.7
	ConfidenceNone        = 0.1
)

// The source system was German-facing, so both German and English phrase
// tables ship as defaults.
var (
	defaultExitPhrases = []string{
		"exit", "quit", "stop", "cancel", "abort",
		"fertig", "abbrechen", "beenden", "schluss", "aufhören",
		"something else", "etwas anderes", "anderes thema",
	}
	defaultCompletionPhrases = []string{
		"that's all", "thats all", "thank you", "thanks", "done",
		"danke", "vielen dank", "erledigt", "das war's", "das wars", "passt",
	}
)

// Options configures a Detector.
type Options struct {
	ExitPhrases        []string
	CompletionPhrases  []string
	StagnationWindow   int // number of trailing inputs examined
	StagnationDistinct int // exit forced when distinct inputs <= this
	FrustrationTurns   int // incumbent turns before a forced exit mid-workflow
	Logger             logging.Logger
}

// Detector classifies whether the user intends to leave the current workflow.
// It is a stateless function of (input, state); all conversational memory
// comes from the state's history.
type Detector struct {
	completer model.Completer
	opts      Options
}

// New constructs a Detector. The completer backs the topic-change judgment
// and may be nil, in which case topic changes fall back to the keyword
// classification alone.
func New(completer model.Completer, optFns ...func(o *Options)) *Detector {
	opts := Options{
		ExitPhrases:        defaultExitPhrases,
		CompletionPhrases:  defaultCompletionPhrases,
		StagnationWindow:   4,
		StagnationDistinct: 2,
		FrustrationTurns:   7,
		Logger:             logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Detector{completer: completer, opts: opts}
}

// Detect runs the detection chain against the new input. Precedence, first
// match wins: explicit phrase > completion phrase > model-judged topic change
// > stagnation/frustration heuristics > none.
func (d *Detector) Detect(ctx context.Context, input string, state *core.ConversationState) core.ExitSignal {
	normalized := normalize(input)

	if phrase, ok := containsAny(normalized, d.opts.ExitPhrases); ok {
		return core.ExitSignal{
			Detected:   true,
			Kind:       core.ExitExplicit,
			Confidence: ConfidenceExplicit,
			Reason:     fmt.Sprintf("explicit exit phrase %q", phrase),
		}
	}

	if phrase, ok := containsAny(normalized, d.opts.CompletionPhrases); ok {
		return core.ExitSignal{
			Detected:   true,
			Kind:       core.ExitCompletion,
			Confidence: ConfidenceCompletion,
			Reason:     fmt.Sprintf("completion phrase %q", phrase),
		}
	}

	if signal, ok := d.detectTopicChange(ctx, input, state); ok {
		return signal
	}

	if signal, ok := d.detectStagnation(input, state); ok {
		return signal
	}

	if signal, ok := d.detectFrustration(state); ok {
		return signal
	}

	return core.ExitSignal{Kind: core.ExitNone, Confidence: ConfidenceNone, Reason: "no exit intent"}
}

// detectStagnation flags a forced exit when the trailing window of user
// inputs (history plus the current one) collapses to too few distinct
// strings. This prevents infinite sticking when user and handler talk past
// each other.
func (d *Detector) detectStagnation(input string, state *core.ConversationState) (core.ExitSignal, bool) {
	window := d.opts.StagnationWindow
	inputs := append(state.RecentUserInputs(window-1), input)
	if len(inputs) < window {
		return core.ExitSignal{}, false
	}
	distinct := map[string]struct{}{}
	for _, in := range inputs {
		distinct[normalize(in)] = struct{}{}
	}
	if len(distinct) > d.opts.StagnationDistinct {
		return core.ExitSignal{}, false
	}
	return core.ExitSignal{
		Detected:   true,
		Kind:       core.ExitStagnation,
		Confidence: ConfidenceContextual,
		Reason:     fmt.Sprintf("%d distinct inputs in last %d turns", len(distinct), window),
	}, true
}

// detectFrustration forces an exit after too many turns with the same
// incumbent while a workflow is neither idle nor completed.
func (d *Detector) detectFrustration(state *core.ConversationState) (core.ExitSignal, bool) {
	if state.Stage != core.StageInProgress {
		return core.ExitSignal{}, false
	}
	if state.ActiveHandlerTurnCount <= d.opts.FrustrationTurns {
		return core.ExitSignal{}, false
	}
	return core.ExitSignal{
		Detected:   true,
		Kind:       core.ExitStagnation,
		Confidence: ConfidenceContextual,
		Reason:     fmt.Sprintf("%d turns with %s without completing the workflow", state.ActiveHandlerTurnCount, state.ActiveHandler),
	}, true
}

// detectTopicChange derives coarse topic labels for the prior and current
// input and, when they diverge, asks the completion service to judge. A
// malformed or failed completion defaults to "no change".
func (d *Detector) detectTopicChange(ctx context.Context, input string, state *core.ConversationState) (core.ExitSignal, bool) {
	prior := state.LastUserInput()
	if prior == "" {
		return core.ExitSignal{}, false
	}

	priorTopic := keywordTopic(prior)
	currentTopic := keywordTopic(input)
	if priorTopic != "" && priorTopic == currentTopic {
		return core.ExitSignal{}, false
	}

	changed, confidence, label := d.judgeTopicChange(ctx, prior, input)
	if !changed || confidence < 0.5 {
		return core.ExitSignal{}, false
	}
	return core.ExitSignal{
		Detected:   true,
		Kind:       core.ExitTopicChange,
		Confidence: ConfidenceTopicChange,
		Reason:     fmt.Sprintf("topic changed to %q (model confidence %.2f)", label, confidence),
	}, true
}

// judgeTopicChange asks the completion service for a `changed|confidence|label`
// verdict. Any failure or unparseable reply is treated as the documented
// fallback: no change, confidence 0.5.
func (d *Detector) judgeTopicChange(ctx context.Context, prior, current string) (bool, float64, string) {
	if d.completer == nil {
		// Keyword-only mode: diverging non-empty labels count as a change.
		pt, ct := keywordTopic(prior), keywordTopic(current)
		return pt != "" && ct != "" && pt != ct, 0.6, ct
	}

	prompt := fmt.Sprintf(
		"Previous user message: %q\nCurrent user message: %q\n"+
			"Did the conversation topic change? Answer exactly in the format changed|confidence|label "+
			"or unchanged|confidence|label, where confidence is between 0 and 1.",
		prior, current,
	)
	reply, err := d.completer.Complete(ctx, model.Request{
		System: "You classify whether the topic of a conversation changed between two messages.",
		Prompt: prompt,
	})
	if err != nil {
		d.opts.Logger.Warn("topic judge completion failed", "error", err)
		return false, 0.5, ""
	}
	return parseTopicVerdict(reply)
}

// parseTopicVerdict parses a `changed|confidence|label` reply. Malformed
// replies default to no change with confidence 0.5.
func parseTopicVerdict(reply string) (bool, float64, string) {
	parts := strings.SplitN(strings.TrimSpace(reply), "|", 3)
	if len(parts) < 2 {
		return false, 0.5, ""
	}
	verdict := strings.ToLower(strings.TrimSpace(parts[0]))
	if verdict != "changed" && verdict != "unchanged" {
		return false, 0.5, ""
	}
	confidence, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || confidence < 0 || confidence > 1 {
		return false, 0.5, ""
	}
	label := ""
	if len(parts) == 3 {
		label = strings.TrimSpace(parts[2])
	}
	return verdict == "changed", confidence, label
}

// topicKeywords lists coarse topic labels with their keyword sets for the
// cheap local classification that gates the model call. Order matters: the
// first matching label wins.
var topicKeywords = []struct {
	label string
	words []string
}{
	{"travel", []string{"flight", "hotel", "book", "travel", "trip", "fliegen", "flug", "buchen", "reise", "urlaub"}},
	{"support", []string{"problem", "error", "broken", "help", "issue", "fehler", "kaputt", "hilfe", "funktioniert nicht"}},
	{"weather", []string{"weather", "rain", "sunny", "temperature", "wetter", "regen", "sonnig"}},
	{"smalltalk", []string{"hello", "hi ", "how are you", "hallo", "wie geht"}},
}

// keywordTopic returns a coarse topic label for an input, or "" when nothing
// matches.
func keywordTopic(input string) string {
	normalized := normalize(input)
	for _, topic := range topicKeywords {
		for _, w := range topic.words {
			if strings.Contains(normalized, w) {
				return topic.label
			}
		}
	}
	return ""
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsAny(normalized string, phrases []string) (string, bool) {
	for _, p := range phrases {
		if strings.Contains(normalized, p) {
			return p, true
		}
	}
	return "", false
}
