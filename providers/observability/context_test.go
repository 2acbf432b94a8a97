package observability

import (
	"context"
	"testing"
)

type mockSpan struct {
	name   string
	events []string
}

func (m *mockSpan) End() {}
func (m *mockSpan) SetAttributes(attrs ...Attribute) {}
func (m *mockSpan) SetStatus(code StatusCode, desc string) {}
func (m *mockSpan) RecordError(err error) {}
func (m *mockSpan) AddEvent(name string, attrs ...Attribute) {
	m.events = append(m.events, name)
}

type recordingObserver struct {
	nopProvider
	messages []string
}

func (r *recordingObserver) Info(_ context.Context, msg string, _ ...Attribute) {
	r.messages = append(r.messages, msg)
}

func TestSpanFromContext_Empty(t *testing.T) {
	if span := SpanFromContext(context.Background()); span != nil {
		t.Errorf("Expected nil span from empty context, got %v", span)
	}
}

func TestSpanFromContext_WithSpan(t *testing.T) {
	mock := &mockSpan{name: "test-span"}
	ctx := ContextWithSpan(context.Background(), mock)

	span := SpanFromContext(ctx)
	if span != mock {
		t.Errorf("Expected same span instance, got %v", span)
	}
}

func TestObserverFromContext_DefaultsToNop(t *testing.T) {
	observer := ObserverFromContext(context.Background())
	if observer == nil {
		t.Fatal("Expected a non-nil observer")
	}

	// Must be safe to call.
	ctx, span := observer.StartSpan(context.Background(), "noop")
	span.AddEvent("event")
	span.End()
	observer.Info(ctx, "ignored")
}

func TestObserverFromContext_WithObserver(t *testing.T) {
	recorder := &recordingObserver{}
	ctx := ContextWithObserver(context.Background(), recorder)

	ObserverFromContext(ctx).Info(ctx, "hello")

	if len(recorder.messages) != 1 || recorder.messages[0] != "hello" {
		t.Errorf("Expected one message 'hello', got %v", recorder.messages)
	}
}

func TestContextWithObserver_NilObserverFallsBack(t *testing.T) {
	ctx := ContextWithObserver(context.Background(), nil)
	if ObserverFromContext(ctx) == nil {
		t.Error("Expected fallback observer, got nil")
	}
}
