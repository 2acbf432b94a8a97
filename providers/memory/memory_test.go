package memory

import "testing"

func TestHistoryWith_DoesNotMutateReceiver(t *testing.T) {
	original := NewHistory(UserMessage("hi"))
	extended := original.With(AssistantMessage("hello"), UserMessage("how are you"))

	if original.Len() != 1 {
		t.Errorf("expected original to keep 1 message, got %d", original.Len())
	}
	if extended.Len() != 3 {
		t.Errorf("expected 3 messages, got %d", extended.Len())
	}
	if extended.Messages[1].Role != RoleAssistant {
		t.Errorf("expected assistant turn, got %s", extended.Messages[1].Role)
	}

	// Writing through the new slice must not leak into the original.
	extended.Messages[0].Content = "changed"
	if original.Messages[0].Content != "hi" {
		t.Error("With must copy the underlying messages")
	}
}

func TestNewHistory_CopiesInput(t *testing.T) {
	messages := []Message{UserMessage("a")}
	history := NewHistory(messages...)
	messages[0].Content = "b"
	if history.Messages[0].Content != "a" {
		t.Error("NewHistory must copy its input")
	}
}

func TestResolve(t *testing.T) {
	history := NewHistory(UserMessage("hi"))

	tests := []struct {
		name           string
		ref            Ref
		supports       bool
		wantKind       string
		wantNil        bool
		wantDowngraded bool
	}{
		{"nil stays nil", nil, false, "", true, false},
		{"history passes through", history, false, "history", false, false},
		{"continuation supported", Continuation{ResponseID: "resp_1"}, true, "continuation", false, false},
		{"continuation downgraded", Continuation{ResponseID: "resp_1"}, false, "history", false, true},
		{"pointer continuation downgraded", &Continuation{ResponseID: "resp_1"}, false, "history", false, true},
		{"pointer history dereferenced", &history, false, "history", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, downgraded := Resolve(tt.ref, tt.supports)
			if downgraded != tt.wantDowngraded {
				t.Errorf("downgraded = %v, want %v", downgraded, tt.wantDowngraded)
			}
			if tt.wantNil {
				if got != nil {
					t.Errorf("expected nil ref, got %#v", got)
				}
				return
			}
			if got.Kind() != tt.wantKind {
				t.Errorf("Kind() = %q, want %q", got.Kind(), tt.wantKind)
			}
		})
	}
}

func TestResolve_DowngradedHistoryIsEmpty(t *testing.T) {
	got, _ := Resolve(Continuation{ResponseID: "resp_1"}, false)
	history, ok := got.(History)
	if !ok {
		t.Fatalf("expected History, got %T", got)
	}
	if history.Len() != 0 {
		t.Errorf("expected empty history, got %d messages", history.Len())
	}
}
