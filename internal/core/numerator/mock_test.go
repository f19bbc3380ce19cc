package numerator

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockAllocator_ConcurrentDistinct(t *testing.T) {
	m := NewMockAllocator()
	ctx := context.Background()

	const workers = 20
	results := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := m.Next(ctx, "ACM-MOB-SMA")
			assert.NoError(t, err)
			results <- n
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool)
	for n := range results {
		assert.False(t, seen[n], "value %d issued twice", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)

	cur, err := m.Current(ctx, "ACM-MOB-SMA")
	require.NoError(t, err)
	assert.Equal(t, int64(workers), cur)
}

func TestMockAllocator_KeysIndependent(t *testing.T) {
	m := NewMockAllocator()
	ctx := context.Background()

	a, _ := m.Next(ctx, "A")
	b, _ := m.Next(ctx, "B")
	a2, _ := m.Next(ctx, "A")

	assert.Equal(t, int64(1), a)
	assert.Equal(t, int64(1), b)
	assert.Equal(t, int64(2), a2)
	assert.Equal(t, []string{"A", "B", "A"}, m.Calls())
}
