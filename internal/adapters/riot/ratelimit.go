package riot

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/riftscope/riftscope/pkg/metrics"
)

// Stats is a point-in-time snapshot of the outbound limiter. All fields are
// read under one critical section so a reader never sees a torn combination.
type Stats struct {
	MaxConcurrent int `json:"maxConcurrent"`
	InFlight      int `json:"inFlight"`
	Queued        int `json:"queued"`
}

// limiter bounds concurrent outbound calls with a channel semaphore and
// smooths the request rate with a token bucket. The counters exist for
// observability only; the semaphore is the actual gate.
type limiter struct {
	mu       sync.Mutex
	max      int
	inFlight int
	queued   int

	sem    chan struct{}
	smooth *rate.Limiter
}

// newLimiter creates a limiter. maxConcurrent below 1 clamps to 1;
// requestsPerSec <= 0 disables rate smoothing.
func newLimiter(maxConcurrent int, requestsPerSec float64) *limiter {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	l := &limiter{
		max: maxConcurrent,
		sem: make(chan struct{}, maxConcurrent),
	}
	if requestsPerSec > 0 {
		l.smooth = rate.NewLimiter(rate.Limit(requestsPerSec), maxConcurrent)
	}
	return l
}

// acquire blocks until an outbound slot is free, then returns a release func
// that must be called exactly once when the call completes.
func (l *limiter) acquire(ctx context.Context) (func(), error) {
	l.mu.Lock()
	l.queued++
	l.publishLocked()
	l.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		l.mu.Lock()
		l.queued--
		l.publishLocked()
		l.mu.Unlock()
		return nil, fmt.Errorf("%w: %w", ErrSlotAborted, ctx.Err())
	}

	if l.smooth != nil {
		if err := l.smooth.Wait(ctx); err != nil {
			l.mu.Lock()
			l.queued--
			l.publishLocked()
			l.mu.Unlock()
			<-l.sem
			return nil, fmt.Errorf("%w: %w", ErrSlotAborted, err)
		}
	}

	l.mu.Lock()
	l.queued--
	l.inFlight++
	l.publishLocked()
	l.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			if l.inFlight > 0 {
				l.inFlight--
			}
			l.publishLocked()
			l.mu.Unlock()
			<-l.sem
		})
	}
	return release, nil
}

// stats returns an atomic snapshot of the limiter counters.
func (l *limiter) stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		MaxConcurrent: l.max,
		InFlight:      l.inFlight,
		Queued:        l.queued,
	}
}

// publishLocked pushes the counters to the metrics gauges. Caller holds l.mu.
func (l *limiter) publishLocked() {
	metrics.UpdateRiotInFlight(l.inFlight)
	metrics.UpdateRiotQueued(l.queued)
}
