package idgen

import (
	"context"
	"sync/atomic"
)

// MemorySequence is a process-local counter. Values restart on every run,
// so it only suits tests and throwaway sqlite databases.
type MemorySequence struct {
	name string
	step int64
	last atomic.Int64
}

// NewMemorySequence hands out start, start+step, start+2*step...
func NewMemorySequence(name string, start, step int64) *MemorySequence {
	if step < 1 {
		step = 1
	}
	s := &MemorySequence{name: name, step: step}
	s.last.Store(start - step)
	return s
}

func (s *MemorySequence) Name() string { return s.name }

func (s *MemorySequence) Next(context.Context) (int64, error) {
	return s.last.Add(s.step), nil
}

func (s *MemorySequence) SupportsBatchInserts() bool { return true }
