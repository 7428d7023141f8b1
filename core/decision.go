package core

// RoutingDecision is the outcome of a policy's Route call. It is immutable
// once produced. Reason and AlternativeScores exist purely for observability
// and tests; nothing downstream branches on them.
type RoutingDecision struct {
	SelectedHandler   string             `json:"selected_handler"`
	Confidence        float64            `json:"confidence"`
	Changed           bool               `json:"changed"`
	PreviousHandler   string             `json:"previous_handler"`
	Reason            string             `json:"reason"`
	AlternativeScores map[string]float64 `json:"alternative_scores,omitempty"`
}

// OwnershipClaim is a handler's self-assessment of whether it should retain
// control of the conversation. Produced fresh per turn, never persisted.
// Priority only breaks ties among handlers that want control; it never
// overrides a handler that explicitly relinquishes.
type OwnershipClaim struct {
	KeepControl        bool    `json:"keep_control"`
	Confidence         float64 `json:"confidence"`
	Priority           int     `json:"priority"`
	SuggestedSuccessor string  `json:"suggested_successor,omitempty"`
	Reason             string  `json:"reason"`
}

// ExitKind classifies how an intent to leave the current workflow was
// detected.
type ExitKind int

const (
	// ExitNone means no exit intent was detected.
	ExitNone ExitKind = iota
	// ExitExplicit means the input contained an explicit exit phrase.
	ExitExplicit
	// ExitCompletion means the input contained a completion phrase.
	ExitCompletion
	// ExitTopicChange means the completion service judged a topic change.
	ExitTopicChange
	// ExitStagnation means the conversation is looping (repeated inputs) or
	// the user is stuck with the incumbent.
	ExitStagnation
)

// String returns the string representation of the exit kind.
func (k ExitKind) String() string {
	switch k {
	case ExitNone:
		return "none"
	case ExitExplicit:
		return "explicit"
	case ExitCompletion:
		return "completion"
	case ExitTopicChange:
		return "topic_change"
	case ExitStagnation:
		return "stagnation"
	default:
		return "unknown"
	}
}

// ExitSignal is the combined result of exit detection for a single input.
type ExitSignal struct {
	Detected   bool     `json:"detected"`
	Kind       ExitKind `json:"kind"`
	Confidence float64  `json:"confidence"`
	Reason     string   `json:"reason"`
}
