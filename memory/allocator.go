// Package memory provides the buffer capability used by the quadrature
// gradient pipeline. Kernels only ever see []float64; where the storage comes
// from is decided by the Allocator injected into the pipeline.
package memory

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrAllocation is the cause of every allocation failure.
var ErrAllocation = errors.New("memory: allocation failed")

type Allocator interface {
	// Alloc returns a zeroed buffer of n doubles.
	Alloc(n int) ([]float64, error)
	// Free returns a buffer obtained from Alloc. Freeing nil is a no-op.
	Free(buf []float64)
}

// HostAllocator hands out Go heap memory. A positive Limit caps the number of
// doubles outstanding at any time.
type HostAllocator struct {
	Limit int
	mu    sync.Mutex
	inUse int
	live  int
}

func NewHostAllocator(limit int) *HostAllocator {
	return &HostAllocator{Limit: limit}
}

func (ha *HostAllocator) Alloc(n int) (buf []float64, err error) {
	if n < 0 {
		err = errors.Wrapf(ErrAllocation, "negative size %d", n)
		return
	}
	ha.mu.Lock()
	defer ha.mu.Unlock()
	if ha.Limit > 0 && ha.inUse+n > ha.Limit {
		err = errors.Wrapf(ErrAllocation, "request for %d doubles exceeds limit, %d of %d in use",
			n, ha.inUse, ha.Limit)
		return
	}
	buf = make([]float64, n)
	ha.inUse += n
	ha.live++
	return
}

func (ha *HostAllocator) Free(buf []float64) {
	if buf == nil {
		return
	}
	ha.mu.Lock()
	defer ha.mu.Unlock()
	ha.inUse -= cap(buf)
	ha.live--
	if ha.inUse < 0 {
		panic("memory: freed more than was allocated")
	}
}

// InUse reports the number of doubles currently outstanding.
func (ha *HostAllocator) InUse() int {
	ha.mu.Lock()
	defer ha.mu.Unlock()
	return ha.inUse
}

// Live reports the number of buffers currently outstanding.
func (ha *HostAllocator) Live() int {
	ha.mu.Lock()
	defer ha.mu.Unlock()
	return ha.live
}

// IsAllocationError reports whether err was caused by an Allocator failure.
func IsAllocationError(err error) bool {
	return errors.Is(err, ErrAllocation)
}
