package inmemory

import (
	"context"
	"sync"

	"github.com/leofalp/aimux/providers/memory"
	"github.com/leofalp/aimux/providers/observability"
)

// Store is a concurrency-safe, process-local memory.Store.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]memory.Ref
}

// New returns an empty Store.
func New() *Store {
	return &Store{sessions: make(map[string]memory.Ref)}
}

var _ memory.Store = (*Store)(nil)

// Save records ref as the latest state of sessionID. Saving a nil ref clears
// the session.
func (s *Store) Save(ctx context.Context, sessionID string, ref memory.Ref) {
	if ref == nil {
		s.Delete(ctx, sessionID)
		return
	}

	s.mu.Lock()
	s.sessions[sessionID] = ref
	count := len(s.sessions)
	s.mu.Unlock()

	if span := observability.SpanFromContext(ctx); span != nil {
		attrs := []observability.Attribute{
			observability.String(observability.AttrConversationKind, ref.Kind()),
			observability.Int("memory.sessions", count),
		}
		if history, ok := ref.(memory.History); ok {
			attrs = append(attrs, observability.Int("memory.messages", history.Len()))
		}
		span.AddEvent("memory.save", attrs...)
	}
}

// Load returns the latest ref saved for sessionID, or nil.
func (s *Store) Load(_ context.Context, sessionID string) memory.Ref {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[sessionID]
}

// Delete forgets sessionID.
func (s *Store) Delete(_ context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// Len returns the number of sessions held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
