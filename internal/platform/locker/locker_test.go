package locker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLocalTimesOutWhileHeld(t *testing.T) {
	l := NewLocal()
	release, err := l.Acquire(context.Background(), []string{"tree:a"}, time.Second)
	require.NoError(t, err)

	_, err = l.Acquire(context.Background(), []string{"tree:b", "tree:a"}, 30*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)

	// The failed attempt must not keep tree:b.
	rb, err := l.Acquire(context.Background(), []string{"tree:b"}, 30*time.Millisecond)
	require.NoError(t, err)
	rb()

	release()
	release()
	ra, err := l.Acquire(context.Background(), []string{"tree:a"}, 30*time.Millisecond)
	require.NoError(t, err)
	ra()
}

func TestLocalHonoursCancellation(t *testing.T) {
	l := NewLocal()
	release, err := l.Acquire(context.Background(), []string{"k"}, time.Second)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Acquire(ctx, []string{"k"}, time.Second)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLocalSerializesOverlappingKeys(t *testing.T) {
	l := NewLocal()
	var inside, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		keys := []string{"roots", "tree:x"}
		if i%2 == 0 {
			keys = []string{"tree:x", "roots", "tree:x"}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), keys, 5*time.Second)
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), peak)
}

func TestNormalize(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, normalize([]string{"b", "a", "b"}))
}
