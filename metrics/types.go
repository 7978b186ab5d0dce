// Package metrics defines the types and constants used for metric collection and reporting.
package metrics

// Policy defines the aggregation policy for metric values.
// It determines how multiple values for the same metric should be combined over a time window.
type Policy int

const (
	Policy_None      Policy = iota // Policy_None indicates no specific aggregation policy. The reporting system may use a default.
	Policy_Set                     // Policy_Set represents an instantaneous value; the last reported value wins.
	Policy_Sum                     // Policy_Sum represents a cumulative value, summing all reported values.
	Policy_Avg                     // Policy_Avg represents the average of all reported values.
	Policy_Max                     // Policy_Max represents the maximum value among all reported values.
	Policy_Min                     // Policy_Min represents the minimum value among all reported values.
	Policy_Stopwatch               // Policy_Stopwatch is for timing metrics, measuring event durations.
	Policy_Histogram               // Policy_Histogram is for histogram statistics, capturing value distribution.
)

// Value represents a metric value as a float64.
type Value float64

// Dimension represents metric dimensions as key-value pairs.
// Dimensions provide contextual information for metrics, such as instance name, region, or version.
type Dimension map[string]string

// merged returns a new Dimension combining base with overrides. Keys present
// in both take the override's value. A nil result is returned only when both
// inputs are nil.
func (d Dimension) merged(overrides Dimension) Dimension {
	if d == nil && overrides == nil {
		return nil
	}
	out := make(Dimension, len(d)+len(overrides))
	for k, v := range d {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

const (
	// KB represents a kilobyte (1024 bytes).
	KB = 1024.0
	// MB represents a megabyte (1024 * 1024 bytes).
	MB = 1024.0 * 1024.0
)

// Group related constants, prefixed with Group.
const (
	// GroupKestrel is the group name for the library's self-instrumentation metrics.
	GroupKestrel = "kestrel"
)

// Metric related constants
const (
	// NamePoolCreateTotal: Total number of objects created by a pool because the pool was empty.
	// group:kestrel dimension:poolname
	NamePoolCreateTotal = "pool_create_total"

	// NameStoreSetFailTotal: Total number of failed window-maximum pushes to a Store.
	// group:kestrel dimension:gauge
	NameStoreSetFailTotal = "store_set_fail_total"
)

// Dimension related definitions, must be prefixed with Dim. The comment should include the group.
const (
	// DimPoolName is the dimension for pool name.
	// group:kestrel
	DimPoolName = "poolname"
	// DimGauge is the dimension for the owning gauge name.
	// group:kestrel
	DimGauge = "gauge"
)
