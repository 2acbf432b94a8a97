package inmemory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/leofalp/aimux/providers/memory"
)

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := New()

	if store.Load(ctx, "missing") != nil {
		t.Error("expected nil for unknown session")
	}

	history := memory.NewHistory(memory.UserMessage("hi"), memory.AssistantMessage("hello"))
	store.Save(ctx, "s1", history)
	store.Save(ctx, "s2", memory.Continuation{ResponseID: "resp_1"})

	got, ok := store.Load(ctx, "s1").(memory.History)
	if !ok || got.Len() != 2 {
		t.Errorf("unexpected history %#v", store.Load(ctx, "s1"))
	}
	if store.Load(ctx, "s2").Kind() != "continuation" {
		t.Error("expected continuation for s2")
	}

	store.Save(ctx, "s1", nil)
	if store.Load(ctx, "s1") != nil || store.Len() != 1 {
		t.Error("saving nil should clear the session")
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i%5)
			store.Save(ctx, id, memory.NewHistory(memory.UserMessage(id)))
			_ = store.Load(ctx, id)
		}(i)
	}
	wg.Wait()

	if store.Len() != 5 {
		t.Errorf("expected 5 sessions, got %d", store.Len())
	}
}
