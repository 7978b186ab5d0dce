package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/kestrelmetrics/kestrel/log"
	"github.com/pkg/errors"
)

var (
	// ErrWindowDesync reports a broken FIFO-ordering invariant: the
	// snapshot handed to the expiration worker does not match the current
	// history head. This is unrecoverable and halts the tracker.
	ErrWindowDesync = errors.New("metrics: expired snapshot is not the history head")

	// ErrTrackerHalted is returned by writes after the tracker has been
	// stopped or has halted on a consistency violation.
	ErrTrackerHalted = errors.New("metrics: window tracker halted")
)

// maxSample is the current window maximum: a value and the dimensions of
// the snapshot that produced it.
type maxSample struct {
	value Value
	dims  Dimension
}

// windowTracker maintains the sliding-window state of one decaying max
// gauge: the history of live snapshots, the current maximum, and the
// expiration worker that retires snapshots as their TTL elapses.
//
// All mutation of history and current is serialized through a single
// mutex shared by producers and the worker. The worker sleeps outside the
// lock, so producers are never blocked by a pending expiration; the Store
// push is synchronous and runs inside the critical section, so producers
// observe back-pressure from a slow Store.
type windowTracker struct {
	name string

	mu      sync.Mutex
	hist    *history
	current maxSample
	halted  bool

	ttl     time.Duration
	store   Store
	pending *expireQueue

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// newWindowTracker creates a tracker with the given TTL and Store, seeds
// the history with one zero-value snapshot at the empty dimension set--the
// history is never empty from here on--and starts the expiration worker.
func newWindowTracker(name string, ttl time.Duration, store Store) *windowTracker {
	ctx, cancel := context.WithCancel(context.Background())
	t := &windowTracker{
		name:    name,
		hist:    newHistory(),
		ttl:     ttl,
		store:   store,
		pending: newExpireQueue(),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	t.mu.Lock()
	t.appendLocked(newSnapshot(0, Dimension{}))
	t.mu.Unlock()

	go t.expireLoop()
	return t
}

// Set records an absolute observation.
func (t *windowTracker) Set(v Value, dims Dimension) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.halted {
		return ErrTrackerHalted
	}
	t.appendLocked(newSnapshot(v, dims))
	return nil
}

// Add records an observation relative to the most recent snapshot's raw
// value--not the current maximum. A gauge that has decayed below its peak
// keeps counting from its last raw value. Returns the new raw value.
func (t *windowTracker) Add(delta Value, dims Dimension) (Value, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.halted {
		return 0, ErrTrackerHalted
	}
	v := t.hist.tail().value + delta
	t.appendLocked(newSnapshot(v, dims))
	return v, nil
}

// Current returns the current window maximum and its dimensions.
func (t *windowTracker) Current() (Value, Dimension) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current.value, t.current.dims
}

// appendLocked inserts s into the window. Caller must hold t.mu.
//
// A strictly greater value replaces the current maximum and is pushed to
// the Store synchronously; ties leave the maximum and the Store untouched.
// The snapshot is then appended at the history tail and handed to the
// expiration worker, in that order, under the same lock--this is what
// keeps queue order and history order consistent.
func (t *windowTracker) appendLocked(s *snapshot) {
	if s.value > t.current.value {
		t.current = maxSample{value: s.value, dims: s.dims}
		t.pushStoreLocked()
	}
	t.hist.push(s)
	t.pending.push(s)
}

// remove retires the expired snapshot s from the window. Called only by
// the expiration worker.
func (t *windowTracker) remove(s *snapshot) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if head := t.hist.head(); head != s {
		t.halted = true
		return errors.Wrapf(ErrWindowDesync, "gauge %s", t.name)
	}
	t.hist.pop()

	// Never-empty invariant: a quiescent gauge keeps reporting its last
	// value instead of going blank.
	if t.hist.len() == 0 {
		s.restamp()
		t.appendLocked(s)
	}

	m := t.hist.max()
	t.current = maxSample{value: m.value, dims: m.dims}
	// Unconditional push: the window composition changed even when the
	// maximum did not.
	t.pushStoreLocked()
	return nil
}

// pushStoreLocked forwards the current maximum to the Store. Failures are
// logged and counted, never silently dropped. Caller must hold t.mu.
func (t *windowTracker) pushStoreLocked() {
	if err := t.store.Set(t.current.dims, t.current.value); err != nil {
		log.Error().Err(err).Str("gauge", t.name).
			Float64("value", float64(t.current.value)).Msg("window max store push failed")
		IncrCounterWithDimGroup(NameStoreSetFailTotal, GroupKestrel, 1, Dimension{DimGauge: t.name})
	}
}

// expireLoop is the single expiration worker. Each snapshot is retired
// independently at its own timestamp + TTL, so the gauge decays on
// wall-clock time even during long quiet periods with no writes. The TTL
// sleep happens outside the lock and is never cut short by new appends;
// only Stop interrupts it.
func (t *windowTracker) expireLoop() {
	defer close(t.done)
	for {
		s, ok := t.pending.pop()
		if !ok {
			return
		}

		if remaining := t.ttl - s.age(); remaining > 0 {
			timer := time.NewTimer(remaining)
			select {
			case <-timer.C:
			case <-t.ctx.Done():
				timer.Stop()
				return
			}
		}

		if err := t.remove(s); err != nil {
			log.Fatal().Err(err).Str("gauge", t.name).Msg("window tracker halted")
			return
		}
	}
}

// Stop terminates the expiration worker and rejects further writes. The
// last reported maximum stays in the Store.
func (t *windowTracker) Stop() {
	t.mu.Lock()
	t.halted = true
	t.mu.Unlock()

	t.cancel()
	t.pending.close()
	<-t.done
}
