package irc

import (
	"errors"
	"sync"
	"time"
)

// ErrNoResponse means the server never acknowledged a command before its
// deadline elapsed.
var ErrNoResponse = errors.New("no response from Twitch")

type result struct {
	payload any
	err     error
}

type pendingOp struct {
	ch    chan result
	timer *time.Timer
}

// waiter correlates imperative commands with the asynchronous notices that
// acknowledge them. Several operations may wait on the same key, each with
// its own deadline; a matching signal completes all of them, a signal for
// an unknown key is a no-op.
type waiter struct {
	mu      sync.Mutex
	pending map[string][]*pendingOp
}

func newWaiter() *waiter {
	return &waiter{pending: make(map[string][]*pendingOp)}
}

// register arms a deadline for key and returns the pending operation. The
// timer is armed before the operation is visible, so a completion can never
// observe a half-registered entry.
func (w *waiter) register(key string, timeout time.Duration) *pendingOp {
	op := &pendingOp{ch: make(chan result, 1)}

	w.mu.Lock()
	op.timer = time.AfterFunc(timeout, func() {
		if w.remove(key, op) {
			op.ch <- result{err: ErrNoResponse}
		}
	})
	w.pending[key] = append(w.pending[key], op)
	w.mu.Unlock()

	return op
}

// fail completes one operation without touching its neighbors under the
// same key, used when a local write error concerns a single caller.
func (w *waiter) fail(key string, op *pendingOp, err error) {
	if w.remove(key, op) {
		op.timer.Stop()
		op.ch <- result{err: err}
	}
}

// remove detaches one operation from key, reporting whether it was still
// pending. Losing the race against resolve/reject is harmless.
func (w *waiter) remove(key string, op *pendingOp) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	ops := w.pending[key]
	for i, cand := range ops {
		if cand == op {
			w.pending[key] = append(ops[:i:i], ops[i+1:]...)
			if len(w.pending[key]) == 0 {
				delete(w.pending, key)
			}
			return true
		}
	}
	return false
}

func (w *waiter) resolve(key string, payload any) {
	w.complete(key, result{payload: payload})
}

func (w *waiter) reject(key string, err error) {
	w.complete(key, result{err: err})
}

func (w *waiter) complete(key string, res result) {
	w.mu.Lock()
	ops := w.pending[key]
	delete(w.pending, key)
	w.mu.Unlock()

	for _, op := range ops {
		op.timer.Stop()
		op.ch <- res
	}
}

// rejectAll fails every operation pending under any of keys in one step,
// used when a single broad permission notice answers a whole command family.
func (w *waiter) rejectAll(keys []string, err error) {
	var ops []*pendingOp

	w.mu.Lock()
	for _, key := range keys {
		ops = append(ops, w.pending[key]...)
		delete(w.pending, key)
	}
	w.mu.Unlock()

	for _, op := range ops {
		op.timer.Stop()
		op.ch <- result{err: err}
	}
}

// reset rejects everything outstanding, used on connection teardown.
func (w *waiter) reset(err error) {
	w.mu.Lock()
	all := w.pending
	w.pending = make(map[string][]*pendingOp)
	w.mu.Unlock()

	for _, ops := range all {
		for _, op := range ops {
			op.timer.Stop()
			op.ch <- result{err: err}
		}
	}
}

func await(op *pendingOp) (any, error) {
	res := <-op.ch
	return res.payload, res.err
}
