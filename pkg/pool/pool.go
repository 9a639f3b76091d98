// Package pool provides typed object pooling for the per-row scratch buffers
// of the extractors.
//
// Example usage:
//
//	buf := pool.Runes.Get()
//	defer pool.Runes.Put(buf)
//
//	*buf = append(*buf, 'a')
package pool

import (
	"sync"
	"sync/atomic"
)

// Pool is a type safe wrapper around sync.Pool that resets objects on Put
// and counts allocations. It is safe for concurrent use.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
	}
}

// New creates a pool. reset is optional and runs before an object is put
// back.
func New[T any](new func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		return new()
	}
	return p
}

// Get retrieves an object from the pool, allocating one when it is empty
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.inUse, 1)
	return p.pool.Get().(T)
}

// Put returns an object to the pool
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats returns the number of objects created by the pool and the number
// currently checked out
func (p *Pool[T]) Stats() (allocated, inUse int64) {
	return atomic.LoadInt64(&p.stats.allocated), atomic.LoadInt64(&p.stats.inUse)
}

// maxRuneBuffer bounds the capacity of buffers kept for reuse
const maxRuneBuffer = 64 * 1024

// Runes pools rune buffers used while scanning text
var Runes = New(
	func() *[]rune {
		buf := make([]rune, 0, 256)
		return &buf
	},
	func(buf *[]rune) {
		if cap(*buf) > maxRuneBuffer {
			*buf = make([]rune, 0, 256)
			return
		}
		*buf = (*buf)[:0]
	},
)
