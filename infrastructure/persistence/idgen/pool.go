package idgen

import (
	"context"
	"sync"
)

// pool hands out numbers from a block reserved in one round trip
// (the "pooled" optimizer: one UPDATE / INCRBY per step values).
type pool struct {
	mu       sync.Mutex
	next     int64
	limit    int64 // exclusive
	step     int64
	allocate func(ctx context.Context) (hi int64, err error)
}

func newPool(step int64, allocate func(ctx context.Context) (int64, error)) *pool {
	if step < 1 {
		step = 1
	}
	return &pool{step: step, allocate: allocate}
}

func (p *pool) nextValue(ctx context.Context) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.next >= p.limit {
		hi, err := p.allocate(ctx)
		if err != nil {
			return 0, err
		}
		// allocate returns the highest reserved value: block is (hi-step, hi]
		p.next = hi - p.step + 1
		p.limit = hi + 1
	}
	v := p.next
	p.next++
	return v, nil
}
