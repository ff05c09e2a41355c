package lock

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryLocker_SingleFlight(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	ok, err := locker.TryAcquire(ctx, "ilog:a")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = locker.TryAcquire(ctx, "ilog:a")
	assert.NoError(t, err)
	assert.False(t, ok)

	// Independent keys never block each other.
	ok, err = locker.TryAcquire(ctx, "ilog:b")
	assert.NoError(t, err)
	assert.True(t, ok)

	locker.Release(ctx, "ilog:a")
	ok, err = locker.TryAcquire(ctx, "ilog:a")
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLocker_ConcurrentAcquire(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	acquired := 0

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := locker.TryAcquire(ctx, "ilog:contended")
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, acquired)
}
