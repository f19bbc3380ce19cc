package numerator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
)

// Mock objects
type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates product_counters: UPSERT increments, SELECT reads.
type mockQuerier struct {
	mu       sync.Mutex
	counters map[string]int64
	failNext error
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{counters: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return &mockRow{err: err}
	}

	key := args[0].(string)
	if strings.Contains(sql, "INSERT INTO product_counters") {
		m.counters[key]++
		return &mockRow{val: m.counters[key]}
	}
	v, ok := m.counters[key]
	if !ok {
		return &mockRow{err: pgx.ErrNoRows}
	}
	return &mockRow{val: v}
}

func TestNext_StartsAtOneAndIncrements(t *testing.T) {
	svc := New(newMockQuerier())
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := svc.Next(ctx, "ACM-MOB-SMA")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	}
}

func TestNext_Concurrent(t *testing.T) {
	svc := New(newMockQuerier())
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[int64]bool)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := svc.Next(ctx, "ACM-ACC-CHA")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			mu.Lock()
			if seen[n] {
				t.Errorf("duplicate counter %d", n)
			}
			seen[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != 50 {
		t.Errorf("expected 50 distinct values, got %d", len(seen))
	}
}

func TestNext_FailureBurnsNothingButPropagates(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()

	if _, err := svc.Next(ctx, "K"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q.failNext = errors.New("connection reset")
	if _, err := svc.Next(ctx, "K"); err == nil {
		t.Fatal("expected error")
	}
	n, err := svc.Next(ctx, "K")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2, got %d", n)
	}
}

func TestNext_EmptyKey(t *testing.T) {
	svc := New(newMockQuerier())
	if _, err := svc.Next(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestCurrent(t *testing.T) {
	svc := New(newMockQuerier())
	ctx := context.Background()

	cur, err := svc.Current(ctx, "NEW")
	if err != nil || cur != 0 {
		t.Fatalf("expected 0, nil; got %d, %v", cur, err)
	}
	_, _ = svc.Next(ctx, "NEW")
	_, _ = svc.Next(ctx, "NEW")
	cur, err = svc.Current(ctx, "NEW")
	if err != nil || cur != 2 {
		t.Fatalf("expected 2, nil; got %d, %v", cur, err)
	}
}
