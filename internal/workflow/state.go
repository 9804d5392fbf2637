// Package workflow implements the session-scoped iterative search workflow:
// a fixed sequence of steps that classifies the incoming message, resolves a
// structured query (fresh or reused on negative feedback), fetches and
// exclusion-filters products, ranks them by price and generates the reply.
package workflow

import (
	"github.com/buybuddy-ai/buybuddy/internal/models"
	"github.com/buybuddy-ai/buybuddy/internal/pricing"
)

// Step names one state of the workflow machine. Steps always advance in the
// fixed order below; Next decides which are skipped.
type Step int

const (
	StepConversationCheck Step = iota
	StepFeedbackCheck
	StepResolveQuery
	StepResearch
	StepCompare
	StepSummarize
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepConversationCheck:
		return "conversation_check"
	case StepFeedbackCheck:
		return "feedback_check"
	case StepResolveQuery:
		return "resolve_query"
	case StepResearch:
		return "research"
	case StepCompare:
		return "compare"
	case StepSummarize:
		return "summarize"
	case StepDone:
		return "done"
	}
	return "unknown"
}

// State is the record threaded through one request. Every field exists from
// the start; optional values are nil rather than absent.
type State struct {
	UserMessage string
	SessionID   string

	// Query starts as the session's last structured query (if any) and is
	// replaced when a fresh extraction runs.
	Query          *models.StructuredQuery
	QueryFromStore bool

	IsConversational       bool
	ConversationalResponse string
	IsNegativeFeedback     bool

	Products      []models.Product
	ExcludedLinks []string // cumulative, loaded from the session
	ShownLinks    []string // links first shown this turn

	Comparison     *pricing.Comparison
	ProductMessage string

	Err error
}

// Next is the pure transition function of the workflow machine. It inspects
// only the state produced by the step that just ran.
func Next(cur Step, st *State) Step {
	if st.Err != nil {
		return StepDone
	}
	switch cur {
	case StepConversationCheck:
		if st.IsConversational {
			return StepDone
		}
		return StepFeedbackCheck
	case StepFeedbackCheck:
		return StepResolveQuery
	case StepResolveQuery:
		return StepResearch
	case StepResearch:
		return StepCompare
	case StepCompare:
		return StepSummarize
	case StepSummarize:
		return StepDone
	}
	return StepDone
}
