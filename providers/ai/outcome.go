package ai

import (
	"context"

	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/providers/memory"
	"github.com/leofalp/aimux/providers/tool"
)

// OutcomeKind classifies a single provider response.
type OutcomeKind int

const (
	OutcomePlainText OutcomeKind = iota
	OutcomeToolCallRequested
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomePlainText:
		return "plain_text"
	case OutcomeToolCallRequested:
		return "tool_call_requested"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Invocation is one tool call requested by a model.
type Invocation struct {
	ID           string         // Provider call id; tool results are bound to it
	Name         string
	Arguments    map[string]any
	RawArguments string // Arguments exactly as the provider sent them
}

// Outcome is a provider response translated into the shape the tool round
// trip is written against. Each adapter produces it from its own wire format:
// a stop reason, a function-call block or an output item list.
type Outcome struct {
	Kind        OutcomeKind
	Text        string
	Invocations []Invocation
	Usage       cost.Usage
	ResponseID  string
	Raw         any // Decoded wire response, echoed back by FollowUp
	Err         error
}

// Failed returns a failed outcome wrapping err in ErrProviderCall.
func Failed(err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Err: CallError(err)}
}

// ToolResult is the text returned by a tool, bound to the call that asked
// for it.
type ToolResult struct {
	CallID string
	Name   string
	Output string
}

// ToolSet is the request-scoped tool list handed to a dialect.
type ToolSet struct {
	// System holds provider-native tool names such as SystemToolWebSearch.
	System []string
	// User holds registry tools; the dialect converts their schemas.
	User []tool.Definition
}

// Empty reports whether no tool of either kind is present.
func (t ToolSet) Empty() bool {
	return len(t.System) == 0 && len(t.User) == 0
}

// HasSystem reports whether the system tool name is requested.
func (t ToolSet) HasSystem(name string) bool {
	for _, s := range t.System {
		if s == name {
			return true
		}
	}
	return false
}

// Dialect is the vendor-specific half of a text adapter. W is the adapter's
// wire request type.
type Dialect[W any] interface {
	Name() string
	SupportsContinuation() bool

	// Prepare builds the first request. request.Model is already resolved
	// and request.Conversation already adapted to SupportsContinuation.
	Prepare(request TextRequest, tools ToolSet) (W, error)

	// Send performs one call. It never panics and reports every failure as
	// an OutcomeFailed outcome.
	Send(ctx context.Context, wire W) Outcome

	// FollowUp builds the tool-result request: the original turns, the
	// first response verbatim and one result per call id.
	FollowUp(wire W, first Outcome, results []ToolResult) (W, error)
}

// ConversationMessages returns the prior turns held by a History ref.
func ConversationMessages(ref memory.Ref) []memory.Message {
	if h, ok := ref.(memory.History); ok {
		return h.Messages
	}
	return nil
}

// ContinuationID returns the response id held by a Continuation ref.
func ContinuationID(ref memory.Ref) string {
	if c, ok := ref.(memory.Continuation); ok {
		return c.ResponseID
	}
	return ""
}
