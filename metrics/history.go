package metrics

import "github.com/eapache/queue"

// history is the ordered sequence of snapshots still inside the TTL window.
// Entries are appended at the tail and removed only from the head, so
// insertion order is chronological order: all mutation is serialized by the
// tracker's lock and snapshot timestamps are monotonic.
//
// history is not goroutine-safe; callers must hold the tracker lock.
type history struct {
	q *queue.Queue
}

func newHistory() *history {
	return &history{q: queue.New()}
}

// push appends s at the tail.
func (h *history) push(s *snapshot) {
	h.q.Add(s)
}

// head returns the oldest snapshot without removing it, or nil when empty.
func (h *history) head() *snapshot {
	if h.q.Length() == 0 {
		return nil
	}
	return h.q.Peek().(*snapshot)
}

// tail returns the most recently appended snapshot, or nil when empty.
func (h *history) tail() *snapshot {
	n := h.q.Length()
	if n == 0 {
		return nil
	}
	return h.q.Get(n - 1).(*snapshot)
}

// pop removes and returns the oldest snapshot, or nil when empty.
func (h *history) pop() *snapshot {
	if h.q.Length() == 0 {
		return nil
	}
	return h.q.Remove().(*snapshot)
}

// len returns the number of snapshots in the window.
func (h *history) len() int {
	return h.q.Length()
}

// max returns a maximal snapshot by value via a linear scan, or nil when
// empty. Ties are broken by scan order; any maximal entry is acceptable.
func (h *history) max() *snapshot {
	n := h.q.Length()
	if n == 0 {
		return nil
	}
	best := h.q.Get(0).(*snapshot)
	for i := 1; i < n; i++ {
		if s := h.q.Get(i).(*snapshot); s.value > best.value {
			best = s
		}
	}
	return best
}
