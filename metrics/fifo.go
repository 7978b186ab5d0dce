package metrics

import (
	"sync"

	"github.com/eapache/queue"
)

// expireQueue is the unbounded FIFO feeding snapshots to the expiration
// worker. It preserves strict insertion order: the worker must see
// snapshots in exactly the order they were appended to the history, which
// is what allows removal to be validated with a head-equality check
// instead of a search.
type expireQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	q      *queue.Queue
	closed bool
}

func newExpireQueue() *expireQueue {
	e := &expireQueue{q: queue.New()}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// push enqueues s at the tail and wakes a blocked pop. Pushing to a closed
// queue is a no-op.
func (e *expireQueue) push(s *snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.q.Add(s)
	e.cond.Signal()
}

// pop blocks until a snapshot is available or the queue is closed.
// The second return value is false once the queue is closed; pending
// entries are discarded at that point since the worker is shutting down.
func (e *expireQueue) pop() (*snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for e.q.Length() == 0 && !e.closed {
		e.cond.Wait()
	}
	if e.closed {
		return nil, false
	}
	return e.q.Remove().(*snapshot), true
}

// close releases all blocked pops. Idempotent.
func (e *expireQueue) close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.cond.Broadcast()
}

// len returns the number of pending snapshots.
func (e *expireQueue) len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.q.Length()
}
