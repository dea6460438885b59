// Package pool implements a per-type fixed-chunk allocator with a
// freelist, as spec.md §5 describes: "Pool grows by chunks of 256
// objects; chunks are never freed mid-run." It is not reference-counted
// -- every Get must be paired with exactly one Put along every exit path.
package pool

import "sync"

// ChunkSize is the number of objects allocated at a time when the
// freelist runs dry.
const ChunkSize = 256

// Pool leases and recycles values of type T. New decides how to build a
// fresh T (used both for the initial chunk fill and whenever the
// freelist runs dry), Reset clears a recycled T's fields before it is
// handed out again.
type Pool[T any] struct {
	mu       sync.Mutex
	freelist []*T
	newFn    func() *T
	resetFn  func(*T)

	// allocated counts every object ever constructed, for diagnostics.
	allocated int
}

// New returns a Pool that constructs elements with newFn and clears them
// with resetFn before reuse. resetFn may be nil if T needs no clearing.
func New[T any](newFn func() *T, resetFn func(*T)) *Pool[T] {
	if resetFn == nil {
		resetFn = func(*T) {}
	}
	return &Pool[T]{newFn: newFn, resetFn: resetFn}
}

// Get returns a T from the freelist, growing the pool by one chunk if it
// is empty. Pool exhaustion auto-grows and cannot fail under the
// finite-memory assumptions this package operates at (spec.md §7).
func (p *Pool[T]) Get() *T {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.freelist) == 0 {
		p.grow()
	}
	n := len(p.freelist)
	v := p.freelist[n-1]
	p.freelist = p.freelist[:n-1]
	return v
}

// Put returns v to the freelist after resetting it. Calling Put twice on
// the same pointer, or Put after the owning pool has nothing to do with
// v, is a caller bug (not guarded against -- the pool is not
// reference-counted).
func (p *Pool[T]) Put(v *T) {
	p.resetFn(v)
	p.mu.Lock()
	p.freelist = append(p.freelist, v)
	p.mu.Unlock()
}

// grow must be called with mu held.
func (p *Pool[T]) grow() {
	for i := 0; i < ChunkSize; i++ {
		p.freelist = append(p.freelist, p.newFn())
	}
	p.allocated += ChunkSize
}

// Allocated reports the total number of objects ever constructed by this
// pool, for diagnostics and tests.
func (p *Pool[T]) Allocated() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.allocated
}
