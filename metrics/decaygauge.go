package metrics

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidValue is returned when a decaying max gauge is given a value
// that is not a finite number.
var ErrInvalidValue = errors.New("metrics: value is not a finite number")

// defaultWindowTTL is used when WindowSettings does not specify a TTL.
const defaultWindowTTL = 10 * time.Minute

// WindowSettings configures the sliding window of a decaying max gauge.
type WindowSettings struct {
	// TTL is the sliding window length: how long an observation counts
	// toward the reported maximum.
	TTL time.Duration `mapstructure:"ttl"`

	// Store receives the current maximum whenever it changes. When nil,
	// updates are forwarded to the registered reporters.
	Store Store `mapstructure:"-"`
}

// DecayingMaxGauge reports the highest value observed within a trailing
// time window. The reported maximum decays as old observations age out,
// but the gauge never goes empty: once written it keeps reporting at least
// its last raw value.
type DecayingMaxGauge struct {
	name    string
	group   string
	help    string
	preset  Dimension
	tracker *windowTracker
}

// newDecayingMaxGauge builds the gauge and starts its window tracker.
// preset dimensions are merged into every observation; call-site
// dimensions win on conflict.
func newDecayingMaxGauge(name, group, help string, preset Dimension, settings WindowSettings) *DecayingMaxGauge {
	g := &DecayingMaxGauge{
		name:   name,
		group:  group,
		help:   help,
		preset: preset,
	}
	ttl := settings.TTL
	if ttl <= 0 {
		ttl = defaultWindowTTL
	}
	store := settings.Store
	if store == nil {
		store = &recordStore{m: g}
	}
	g.tracker = newWindowTracker(name, ttl, store)
	return g
}

// Name returns the metric name.
func (g *DecayingMaxGauge) Name() string {
	return g.name
}

// Group returns the metric group.
func (g *DecayingMaxGauge) Group() string {
	return g.group
}

// Help returns the metric docstring.
func (g *DecayingMaxGauge) Help() string {
	return g.help
}

// Policy returns the aggregation policy for this gauge (Policy_Max).
func (g *DecayingMaxGauge) Policy() Policy {
	return Policy_Max
}

// Set records an absolute observation. Non-finite values are rejected with
// ErrInvalidValue before any lock is taken.
func (g *DecayingMaxGauge) Set(v Value, dimensions Dimension) error {
	if err := checkValue(v); err != nil {
		return err
	}
	return g.tracker.Set(v, g.preset.merged(dimensions))
}

// Inc records an observation delta above the most recent raw value.
func (g *DecayingMaxGauge) Inc(delta Value, dimensions Dimension) error {
	if err := checkValue(delta); err != nil {
		return err
	}
	_, err := g.tracker.Add(delta, g.preset.merged(dimensions))
	return err
}

// Dec records an observation delta below the most recent raw value.
func (g *DecayingMaxGauge) Dec(delta Value, dimensions Dimension) error {
	if err := checkValue(delta); err != nil {
		return err
	}
	_, err := g.tracker.Add(-delta, g.preset.merged(dimensions))
	return err
}

// Current returns the maximum currently inside the window and the
// dimensions of the observation that produced it.
func (g *DecayingMaxGauge) Current() (Value, Dimension) {
	return g.tracker.Current()
}

// Stop shuts down the gauge's expiration worker. Further writes fail with
// ErrTrackerHalted.
func (g *DecayingMaxGauge) Stop() {
	g.tracker.Stop()
}

func checkValue(v Value) error {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errors.Wrapf(ErrInvalidValue, "%v", f)
	}
	return nil
}
