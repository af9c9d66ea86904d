// Package locker provides keyed mutual exclusion with a bounded wait.
package locker

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

// ErrTimeout is returned when the keys could not all be held before the
// wait elapsed.
var ErrTimeout = errors.New("lock wait timed out")

// Release gives back every key obtained by one Acquire. Calling it more
// than once is harmless.
type Release func()

type Locker interface {
	Acquire(ctx context.Context, keys []string, wait time.Duration) (Release, error)
}

// normalize sorts and de-duplicates keys so that callers asking for
// overlapping sets always lock in the same order.
func normalize(keys []string) []string {
	out := slices.Clone(keys)
	slices.Sort(out)
	return slices.Compact(out)
}

// Local is an in-process Locker backed by one buffered channel per key.
type Local struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocal() *Local {
	return &Local{slots: map[string]chan struct{}{}}
}

func (l *Local) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

func (l *Local) Acquire(ctx context.Context, keys []string, wait time.Duration) (Release, error) {
	keys = normalize(keys)
	timer := time.NewTimer(wait)
	defer timer.Stop()

	held := make([]chan struct{}, 0, len(keys))
	releaseAll := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}
	for _, k := range keys {
		ch := l.slot(k)
		select {
		case ch <- struct{}{}:
			held = append(held, ch)
		case <-timer.C:
			releaseAll()
			return nil, ErrTimeout
		case <-ctx.Done():
			releaseAll()
			return nil, ctx.Err()
		}
	}
	var once sync.Once
	return func() { once.Do(releaseAll) }, nil
}
