package opt

import (
	"time"
	_ "unsafe"
)

// backoff is how long Delay sleeps once spinning is no longer allowed.
const backoff = 500 * time.Microsecond

// Delay is called on each failed attempt of a CAS loop. It spins while the
// scheduler permits and then sleeps for backoff, resetting *spins.
func Delay(spins *int) {
	if canSpin(*spins) {
		*spins++
		doSpin()
		return
	}
	*spins = 0
	time.Sleep(backoff)
}

//go:linkname canSpin sync.runtime_canSpin
func canSpin(i int) bool

//go:linkname doSpin sync.runtime_doSpin
func doSpin()
