package metrics

// Store is the sink that durably holds the current window maximum for a
// label set. The tracker calls Set synchronously on every change to the
// maximum, inside its critical section, so implementations are expected to
// be fast and non-blocking.
type Store interface {
	Set(dimensions Dimension, value Value) error
}

// recordStore is the default Store: it forwards window-maximum updates to
// the registered reporters as Policy_Max records, which is how a decaying
// max gauge shows up on the Prometheus and remote-write backends.
type recordStore struct {
	m Metrics
}

func (s *recordStore) Set(dimensions Dimension, value Value) error {
	r := Record{
		metrics:    s.m,
		value:      value,
		dimensions: dimensions,
	}
	for _, reporter := range _Reporters {
		reporter.Report(r)
	}
	return nil
}
