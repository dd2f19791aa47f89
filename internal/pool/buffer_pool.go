package pool

import (
	"sync"
)

// BufferPool implements a pool of byte slices for efficient memory reuse
type BufferPool struct {
	pool sync.Pool
	size int
}

// NewBufferPool creates a new buffer pool with buffers of the specified capacity
func NewBufferPool(size int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				buffer := make([]byte, 0, size)
				return &buffer
			},
		},
		size: size,
	}
}

// Get retrieves a buffer from the pool or creates a new one if none are available
func (bp *BufferPool) Get() *[]byte {
	return bp.pool.Get().(*[]byte)
}

// Put returns a buffer to the pool for reuse
func (bp *BufferPool) Put(buffer *[]byte) {
	// Oversized buffers are dropped so one huge batch does not pin memory.
	if cap(*buffer) > bp.size*16 {
		return
	}
	*buffer = (*buffer)[:0]
	bp.pool.Put(buffer)
}

// LineBatchPool implements a pool of string slices holding batches of lines
type LineBatchPool struct {
	pool      sync.Pool
	batchSize int
}

// NewLineBatchPool creates a pool of batches with the given capacity
func NewLineBatchPool(batchSize int) *LineBatchPool {
	return &LineBatchPool{
		pool: sync.Pool{
			New: func() interface{} {
				batch := make([]string, 0, batchSize)
				return &batch
			},
		},
		batchSize: batchSize,
	}
}

// Get retrieves an empty batch
func (lp *LineBatchPool) Get() *[]string {
	return lp.pool.Get().(*[]string)
}

// Put returns a batch to the pool, clearing references to its lines
func (lp *LineBatchPool) Put(batch *[]string) {
	clear(*batch)
	*batch = (*batch)[:0]
	lp.pool.Put(batch)
}
