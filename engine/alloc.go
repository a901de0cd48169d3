package engine

import (
	"sync/atomic"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

// limitAllocator wraps an arrow allocator with a byte budget. Arrow
// allocators cannot return errors, so the budget is enforced cooperatively:
// the executor calls exceeded() between batches and fails the query.
type limitAllocator struct {
	inner memory.Allocator
	limit int64 // 0 means unlimited
	used  atomic.Int64
}

func newLimitAllocator(limit uint64) *limitAllocator {
	return &limitAllocator{inner: memory.DefaultAllocator, limit: int64(limit)}
}

func (a *limitAllocator) Allocate(size int) []byte {
	a.used.Add(int64(size))
	return a.inner.Allocate(size)
}

func (a *limitAllocator) Reallocate(size int, b []byte) []byte {
	a.used.Add(int64(size - len(b)))
	return a.inner.Reallocate(size, b)
}

func (a *limitAllocator) Free(b []byte) {
	a.used.Add(int64(-len(b)))
	a.inner.Free(b)
}

func (a *limitAllocator) exceeded() bool {
	return a.limit > 0 && a.used.Load() > a.limit
}
