package lazymodel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestGetLoadsOnce(t *testing.T) {
	var loads atomic.Int32
	m := New(func(ctx context.Context) (int, error) {
		loads.Add(1)
		return 7, nil
	}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := m.Get(context.Background())
			if err != nil || v != 7 {
				t.Errorf("Get() = %d, %v", v, err)
			}
		}()
	}
	wg.Wait()

	if got := loads.Load(); got != 1 {
		t.Errorf("load called %d times, want 1", got)
	}
}

func TestGetRetriesAfterFailure(t *testing.T) {
	calls := 0
	m := New(func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("cascade missing")
		}
		return "ready", nil
	}, nil)

	if _, err := m.Get(context.Background()); err == nil {
		t.Fatal("first Get() should fail")
	}
	if m.Loaded() {
		t.Fatal("failed load should not be cached")
	}
	v, err := m.Get(context.Background())
	if err != nil || v != "ready" {
		t.Fatalf("second Get() = %q, %v", v, err)
	}
}

func TestCloseReleasesAndReloads(t *testing.T) {
	released := 0
	loads := 0
	m := New(func(ctx context.Context) (int, error) {
		loads++
		return loads, nil
	}, func(int) error {
		released++
		return nil
	})

	if err := m.Close(); err != nil || released != 0 {
		t.Fatalf("Close() before load: err=%v released=%d", err, released)
	}

	m.Get(context.Background())
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if released != 1 {
		t.Errorf("released = %d, want 1", released)
	}

	v, _ := m.Get(context.Background())
	if v != 2 {
		t.Errorf("Get() after Close = %d, want a fresh load (2)", v)
	}
}
