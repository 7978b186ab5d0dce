// Package pool provides a wrapper around sync.Pool with added metrics.
package pool

import (
	"sync"

	"github.com/kestrelmetrics/kestrel/metrics"
)

// Pool is a wrapper around sync.Pool that counts object creations caused
// by pool misses.
type Pool struct {
	Name string     // Name is the pool name, used as a dimension in metrics.
	Pool *sync.Pool // Pool is the underlying sync.Pool instance.
}

// NewPool creates a new instrumented pool. newFunc is called to create an
// item when the pool is empty; each such miss increments a counter tagged
// with the pool name.
func NewPool(name string, newFunc func() any) *Pool {
	p := &Pool{
		Name: name,
	}

	p.Pool = &sync.Pool{
		New: func() any {
			metrics.IncrCounterWithDimGroup(metrics.NamePoolCreateTotal, metrics.GroupKestrel, 1, metrics.Dimension{
				metrics.DimPoolName: name,
			})
			return newFunc()
		},
	}
	return p
}

// Put adds x back to the pool for reuse.
func (p *Pool) Put(x any) {
	p.Pool.Put(x)
}

// Get retrieves an item from the pool, creating one when empty.
func (p *Pool) Get() any {
	return p.Pool.Get()
}
