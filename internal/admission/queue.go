// Package admission provides the process-wide concurrency gate for analysis
// jobs. Callers register a waiter token, block until a slot frees, and can
// poll their queue position from another goroutine while blocked.
package admission

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/riftscope/riftscope/pkg/metrics"
)

const defaultMaxConcurrent = 3

// Stats is a point-in-time snapshot of the queue. All three fields are read
// under one critical section so a reader never sees a torn combination.
type Stats struct {
	MaxConcurrent int `json:"maxConcurrent"`
	Active        int `json:"active"`
	Queued        int `json:"queued"`
}

// Queue bounds how many analyses run at once. The slot gate is a channel
// semaphore; the waiter list exists only for position reporting. Wake order
// follows the runtime's channel scheduling, which is approximately FIFO but
// not guaranteed; no waiter starves as long as slots keep being released.
type Queue struct {
	mu      sync.Mutex
	max     int
	active  int
	waiters []uuid.UUID

	sem chan struct{}
}

// Option applies a configuration option to the Queue.
type Option func(*Queue)

// WithMaxConcurrent sets the slot count. Non-positive values clamp to 1.
func WithMaxConcurrent(n int) Option {
	return func(q *Queue) {
		if n < 1 {
			n = 1
		}
		q.max = n
	}
}

// New creates an admission queue.
func New(opts ...Option) *Queue {
	q := &Queue{max: defaultMaxConcurrent}
	for _, opt := range opts {
		opt(q)
	}
	q.sem = make(chan struct{}, q.max)
	return q
}

// TryAcquire grants a slot immediately when one is free, without joining the
// waiter list. On success it returns a release func that must be called
// exactly once; calling it more than once is a no-op.
func (q *Queue) TryAcquire() (func(), bool) {
	select {
	case q.sem <- struct{}{}:
	default:
		return nil, false
	}

	q.mu.Lock()
	q.active++
	q.publishLocked()
	q.mu.Unlock()
	return q.releaseFunc(), true
}

// Register adds token to the waiter list. Position and Stats report the
// token as soon as Register returns, before the caller blocks in Await.
func (q *Queue) Register(token uuid.UUID) {
	q.mu.Lock()
	q.waiters = append(q.waiters, token)
	q.publishLocked()
	q.mu.Unlock()
}

// Await blocks until a slot is granted to a token previously passed to
// Register, or ctx ends. On grant the token leaves the waiter list and the
// returned release func must be called exactly once; extra calls are no-ops.
// On cancellation the token is deregistered and no slot is held.
func (q *Queue) Await(ctx context.Context, token uuid.UUID) (func(), error) {
	select {
	case q.sem <- struct{}{}:
	case <-ctx.Done():
		q.mu.Lock()
		q.removeWaiterLocked(token)
		q.publishLocked()
		q.mu.Unlock()
		return nil, fmt.Errorf("admission wait aborted: %w", ctx.Err())
	}

	q.mu.Lock()
	q.removeWaiterLocked(token)
	q.active++
	q.publishLocked()
	q.mu.Unlock()
	return q.releaseFunc(), nil
}

// Acquire is Register followed by Await.
func (q *Queue) Acquire(ctx context.Context, token uuid.UUID) (func(), error) {
	q.Register(token)
	return q.Await(ctx, token)
}

// releaseFunc builds the idempotent slot release handed to granted callers.
func (q *Queue) releaseFunc() func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			q.mu.Lock()
			if q.active > 0 {
				q.active--
			}
			q.publishLocked()
			q.mu.Unlock()
			<-q.sem
		})
	}
}

// Position returns the 1-based rank of token among current waiters, or 0 if
// the token is not waiting (already active or never registered).
func (q *Queue) Position(token uuid.UUID) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, w := range q.waiters {
		if w == token {
			return i + 1
		}
	}
	return 0
}

// Stats returns an atomic snapshot of the queue counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		MaxConcurrent: q.max,
		Active:        q.active,
		Queued:        len(q.waiters),
	}
}

// removeWaiterLocked removes token from the waiter list. Caller holds q.mu.
func (q *Queue) removeWaiterLocked(token uuid.UUID) {
	for i, w := range q.waiters {
		if w == token {
			q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
			return
		}
	}
}

// publishLocked pushes the current counters to the metrics gauges.
// Caller holds q.mu.
func (q *Queue) publishLocked() {
	metrics.UpdateAdmissionActive(q.active)
	metrics.UpdateAdmissionWaiting(len(q.waiters))
}
