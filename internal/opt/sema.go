package opt

import (
	_ "unsafe"
)

// Sema parks goroutines on the runtime semaphore that package sync uses.
// The zero value has a count of zero.
type Sema uint32

// Acquire parks until the count is positive and takes one from it.
func (s *Sema) Acquire() {
	semacquire((*uint32)(s))
}

// Release adds one to the count, waking at most one parked Acquire.
func (s *Sema) Release() {
	semrelease((*uint32)(s), false, 0)
}

//go:linkname semacquire sync.runtime_Semacquire
func semacquire(s *uint32)

//go:linkname semrelease sync.runtime_Semrelease
func semrelease(s *uint32, handoff bool, skipframes int)
