package quota

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/querymorph/querymorph/internal/db/memory"
	"github.com/querymorph/querymorph/internal/domain"
)

func TestAdmit_LimitOfFive(t *testing.T) {
	store := New(memory.NewStore(), 5)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		ok, err := store.Admit(ctx, "u1")
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("call %d: expected admission", i)
		}
	}

	ok, err := store.Admit(ctx, "u1")
	if err != nil {
		t.Fatalf("sixth call: %v", err)
	}
	if ok {
		t.Error("sixth call must be rejected")
	}

	// Rejection must not mutate: a seventh call still sees the same state.
	ok, _ = store.Admit(ctx, "u1")
	if ok {
		t.Error("seventh call must still be rejected")
	}
}

func TestAdmit_IndependentUsers(t *testing.T) {
	store := New(memory.NewStore(), 1)
	ctx := context.Background()

	if ok, _ := store.Admit(ctx, "u1"); !ok {
		t.Error("u1 first request should be admitted")
	}
	if ok, _ := store.Admit(ctx, "u1"); ok {
		t.Error("u1 second request should be rejected")
	}
	if ok, _ := store.Admit(ctx, "u2"); !ok {
		t.Error("u2 must not be affected by u1's quota")
	}
}

func TestAdmit_ConcurrentNoOvershoot(t *testing.T) {
	store := New(memory.NewStore(), 5)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Admit(ctx, "u1")
			if err != nil {
				t.Errorf("Admit: %v", err)
				return
			}
			if ok {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != 5 {
		t.Errorf("expected exactly 5 admissions, got %d", admitted)
	}
}

type failingCounter struct{}

func (failingCounter) IncrBelow(context.Context, string, int64) (int64, bool, error) {
	return 0, false, errors.New("connection refused")
}

func TestAdmit_StorageFaultIsNotRejection(t *testing.T) {
	store := New(failingCounter{}, 5)

	ok, err := store.Admit(context.Background(), "u1")
	if ok {
		t.Error("storage fault must not admit")
	}
	if !errors.Is(err, domain.ErrStorage) {
		t.Errorf("expected ErrStorage, got %v", err)
	}
	if errors.Is(err, domain.ErrQuotaExceeded) {
		t.Error("storage fault must not look like quota rejection")
	}
}
