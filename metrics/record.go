package metrics

import "github.com/pkg/errors"

// Record represents a single metric measurement with its metadata.
// It carries the metric definition, the measured value, a count used for
// averaging policies, and the dimensions labeling the measurement.
type Record struct {
	metrics    Metrics
	value      Value
	count      int
	dimensions Dimension
}

// Clone creates a deep copy of the Record including its dimensions.
func (r *Record) Clone() *Record {
	cp := &Record{
		metrics: r.metrics,
		value:   r.value,
		count:   r.count,
	}
	cp.dimensions = make(Dimension, len(r.dimensions))
	for k, v := range r.dimensions {
		cp.dimensions[k] = v
	}
	return cp
}

// SetMetrics sets the metric definition for this record.
func (r *Record) SetMetrics(m Metrics) {
	r.metrics = m
}

// SetValue sets the measured value for this record.
func (r *Record) SetValue(v Value) {
	r.value = v
}

// SetDimension sets the dimensions (labels) for this record.
func (r *Record) SetDimension(d Dimension) {
	r.dimensions = d
}

// Metrics returns the metric definition associated with this record.
func (r *Record) Metrics() Metrics {
	return r.metrics
}

// Value returns the processed value based on the metric's aggregation policy.
// For Policy_Avg and Policy_Stopwatch it returns value/count; for all other
// policies it returns the raw value.
func (r *Record) Value() Value {
	switch r.metrics.Policy() {
	case Policy_Avg, Policy_Stopwatch:
		if r.count != 0 {
			return r.value / Value(r.count)
		}
	}
	return r.value
}

// RawData returns the raw value and count without any policy processing.
func (r *Record) RawData() (Value, int) {
	return r.value, r.count
}

// Dimensions returns the key-value pairs used for metric labeling.
func (r *Record) Dimensions() map[string]string {
	return r.dimensions
}

// Merge combines another Record into this one according to the metric's
// aggregation policy. Both records must describe the same metric with the
// same dimensions.
func (r *Record) Merge(other Record) error {
	if r.metrics.Name() != other.metrics.Name() {
		return errors.Errorf("metrics name(%s,%s) not equal", r.metrics.Name(), other.metrics.Name())
	}
	if r.metrics.Group() != other.metrics.Group() {
		return errors.Errorf("metrics group(%s,%s) not equal", r.metrics.Group(), other.metrics.Group())
	}
	if r.metrics.Policy() != other.metrics.Policy() {
		return errors.Errorf("metrics policy(%v,%v) not equal", r.metrics.Policy(), other.metrics.Policy())
	}

	if len(r.dimensions) != len(other.dimensions) {
		return errors.Errorf("metrics dimensions(%d,%d) not equal", len(r.dimensions), len(other.dimensions))
	}
	for k, v := range r.dimensions {
		v2, exist := other.dimensions[k]
		if !exist {
			return errors.Errorf("metrics dimension(%s) not exist", k)
		}
		if v != v2 {
			return errors.Errorf("metrics dimension(%s,%s) not equal", v, v2)
		}
	}

	switch r.metrics.Policy() {
	case Policy_Set:
		r.value = other.value
	case Policy_Sum:
		r.value += other.value
	case Policy_Max:
		if other.value > r.value {
			r.value = other.value
		}
	case Policy_Min:
		if other.value < r.value {
			r.value = other.value
		}
	case Policy_Stopwatch, Policy_Avg:
		r.value += other.value
		r.count += other.count
	default:
		return errors.Errorf("metrics policy(%v) not mergeable", r.metrics.Policy())
	}
	return nil
}
