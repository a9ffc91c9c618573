package irc

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// joinQueue drains deferred actions one at a time at a fixed pace, so a
// bulk reconnect does not burst-join dozens of channels at once. It is
// rebuilt on every successful login and never survives a reconnect cycle.
type joinQueue struct {
	limiter *rate.Limiter

	mu      sync.Mutex
	actions []func()
	running bool
	cancel  context.CancelFunc
}

func newJoinQueue(interval time.Duration) *joinQueue {
	return &joinQueue{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

func (q *joinQueue) add(action func()) {
	q.mu.Lock()
	q.actions = append(q.actions, action)
	q.mu.Unlock()
}

// run starts draining from an idle state. Calling it while already
// draining is a no-op.
func (q *joinQueue) run() {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	q.mu.Unlock()

	go q.drain(ctx)
}

func (q *joinQueue) drain(ctx context.Context) {
	for {
		q.mu.Lock()
		if len(q.actions) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		action := q.actions[0]
		q.actions = q.actions[1:]
		q.mu.Unlock()

		if err := q.limiter.Wait(ctx); err != nil {
			return
		}
		action()
	}
}

// stop abandons whatever is still queued.
func (q *joinQueue) stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
	q.actions = nil
	q.running = false
}
