package buffer

import "sync"

// Pool provides sync.Pool-based reuse of float64 scratch slices, used for
// widened working copies of float32 channels in hot loops.
type Pool struct {
	pool sync.Pool
}

type scratch struct {
	data []float64
}

// NewPool returns a Pool ready for use.
func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				return &scratch{}
			},
		},
	}
}

// Get returns a zeroed scratch slice with the requested length.
// Callers must return it via Put when done.
func (p *Pool) Get(length int) []float64 {
	s := p.pool.Get().(*scratch)
	if length < 0 {
		length = 0
	}
	if cap(s.data) < length {
		s.data = make([]float64, length)
	}
	data := s.data[:length]
	clear(data)
	return data
}

// Put returns a scratch slice to the pool for reuse.
// The caller must not use the slice after calling Put.
func (p *Pool) Put(data []float64) {
	if data == nil {
		return
	}
	p.pool.Put(&scratch{data: data[:0]})
}
