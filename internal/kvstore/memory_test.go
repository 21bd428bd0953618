package kvstore

import (
	"context"
	"sync"
	"testing"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, err := m.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected miss without error, got ok=%v err=%v", ok, err)
	}

	if err := m.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := m.Get(ctx, "k")
	if err != nil || !ok || v != "v1" {
		t.Fatalf("expected v1, got %q ok=%v err=%v", v, ok, err)
	}

	// Повторная запись того же ключа не должна ломать хранилище.
	if err := m.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("idempotent set: %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", m.Len())
	}
}

func TestMemoryConcurrent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = m.Set(ctx, "shared", "value")
				_, _, _ = m.Get(ctx, "shared")
			}
		}()
	}
	wg.Wait()

	v, ok, _ := m.Get(ctx, "shared")
	if !ok || v != "value" {
		t.Fatalf("expected value after concurrent writes, got %q ok=%v", v, ok)
	}
}
