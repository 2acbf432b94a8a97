package memory

import "context"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one turn of a client-side conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Ref is the conversation state carried from one text generation call to the
// next. It is either a [History] or a [Continuation]; a nil Ref means the call
// is stateless.
type Ref interface {
	// Kind returns "history" or "continuation".
	Kind() string
	isRef()
}

// History is a caller-owned, full message list replayed on every call.
//
// Values are passed by copy: adapters never mutate the History they receive,
// they return a new one with the latest user and assistant turns appended.
// Growth is unbounded; trimming is up to the caller.
type History struct {
	Messages []Message `json:"messages"`
}

// Continuation is an opaque server-side response id. Only providers that hold
// conversation state themselves can consume it.
type Continuation struct {
	ResponseID string `json:"response_id"`
}

func (History) Kind() string { return "history" }

func (Continuation) Kind() string { return "continuation" }

func (History) isRef() {}

func (Continuation) isRef() {}

// NewHistory returns a History holding a copy of messages.
func NewHistory(messages ...Message) History {
	return History{Messages: append([]Message(nil), messages...)}
}

// With returns a new History with turns appended. The receiver is unchanged.
func (h History) With(turns ...Message) History {
	out := make([]Message, 0, len(h.Messages)+len(turns))
	out = append(out, h.Messages...)
	out = append(out, turns...)
	return History{Messages: out}
}

// Len returns the number of messages in the history.
func (h History) Len() int {
	return len(h.Messages)
}

// UserMessage builds a user turn.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant turn.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Resolve adapts ref to a provider's capabilities.
//
// A Continuation sent to a provider that cannot consume it is downgraded to an
// empty History and downgraded is true; the provider then starts a fresh
// client-side history. Every other ref is returned unchanged.
func Resolve(ref Ref, supportsContinuation bool) (resolved Ref, downgraded bool) {
	switch r := ref.(type) {
	case Continuation:
		if supportsContinuation {
			return r, false
		}
		return History{}, true
	case *Continuation:
		if r == nil {
			return nil, false
		}
		return Resolve(*r, supportsContinuation)
	case *History:
		if r == nil {
			return nil, false
		}
		return *r, false
	default:
		return ref, false
	}
}

// Store keeps conversation state between calls, keyed by session id.
type Store interface {
	Save(ctx context.Context, sessionID string, ref Ref)
	Load(ctx context.Context, sessionID string) Ref
	Delete(ctx context.Context, sessionID string)
}
