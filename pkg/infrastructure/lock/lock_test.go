package lock

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type weekLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

func exerciseMutualExclusion(t *testing.T, locker weekLocker, key string) {
	t.Helper()

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), key)
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive)
}

func TestLocalWeekLocker_MutualExclusion(t *testing.T) {
	exerciseMutualExclusion(t, NewLocalWeekLocker(), "2025-03-03")
}

func TestLocalWeekLocker_IndependentWeeks(t *testing.T) {
	locker := NewLocalWeekLocker()

	unlockA, err := locker.Lock(context.Background(), "2025-03-03")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := locker.Lock(ctx, "2025-03-10")
	require.NoError(t, err)
	unlockB()
}

func TestLocalWeekLocker_ContextCancelled(t *testing.T) {
	locker := NewLocalWeekLocker()

	unlock, err := locker.Lock(context.Background(), "2025-03-03")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "2025-03-03")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // second release is a no-op

	again, err := locker.Lock(context.Background(), "2025-03-03")
	require.NoError(t, err)
	again()
}

func TestRedisWeekLocker_MutualExclusion(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client, err := NewRedisClient(context.Background(), addr, os.Getenv("REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	defer client.Close()

	locker, err := NewRedisWeekLocker(client, "prodsched:test:lock:", 5*time.Second, 5*time.Millisecond, nil)
	require.NoError(t, err)

	exerciseMutualExclusion(t, locker, time.Now().Format(time.RFC3339Nano))
}

func TestNewRedisWeekLocker_Validation(t *testing.T) {
	_, err := NewRedisWeekLocker(nil, "", time.Second, 0, nil)
	assert.Error(t, err)
}
