package metrics

import "time"

// snapshot is one timestamped, labeled observation of a decaying max gauge.
// Snapshots are immutable after creation with a single exception: when the
// window would otherwise drain empty, the tracker re-stamps the last
// snapshot to "now" and re-appends it so the gauge keeps reporting its last
// known value. Snapshots are compared by pointer identity, which is what
// lets the expiration worker assert strict FIFO consistency.
type snapshot struct {
	value Value
	dims  Dimension
	ts    time.Time
}

func newSnapshot(v Value, dims Dimension) *snapshot {
	return &snapshot{
		value: v,
		dims:  dims,
		ts:    time.Now(),
	}
}

// age returns the time elapsed since the snapshot was taken.
// time.Time carries a monotonic reading, so this is immune to wall-clock
// adjustments.
func (s *snapshot) age() time.Duration {
	return time.Since(s.ts)
}

// restamp moves the snapshot's capture time to now. Only the tracker's
// never-empty re-append path may call this.
func (s *snapshot) restamp() {
	s.ts = time.Now()
}
