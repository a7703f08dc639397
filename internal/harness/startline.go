package harness

import (
	"sync/atomic"

	"github.com/Helios-vmg/rwmutex/internal/opt"
)

// StartLine holds a fixed party of goroutines until all of them have
// arrived, then releases them together. It can be reused for the next
// round as soon as a round is released.
//
// It is zero-value usable.
type StartLine struct {
	// state 64-bit:
	//   High 32: Generation
	//   Low 32: Arrived count
	state atomic.Uint64

	// Generation N parks on sema[N%2] so a fast caller entering the next
	// round cannot take a wakeup meant for this one.
	sema [2]opt.Sema
}

// Arrive blocks until parties callers have arrived, and returns the
// arrival index of the caller. It panics if parties <= 0.
func (l *StartLine) Arrive(parties int) int {
	if parties <= 0 {
		panic("harness: parties must be positive")
	}
	if parties == 1 {
		return 0
	}

	var spins int
	for {
		s := l.state.Load()
		gen := s >> 32
		count := uint32(s)

		if count == uint32(parties)-1 {
			if l.state.CompareAndSwap(s, (gen+1)<<32) {
				sema := &l.sema[gen%2]
				for range count {
					sema.Release()
				}
				return int(count)
			}
		} else if l.state.CompareAndSwap(s, s+1) {
			l.sema[gen%2].Acquire()
			return int(count)
		}
		opt.Delay(&spins)
	}
}
