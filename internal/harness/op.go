package harness

import (
	"github.com/Helios-vmg/rwmutex"
)

// Op is one caller's pattern of use of the lock.
type Op uint8

const (
	// Read takes a read hold.
	Read Op = iota
	// ReadThenWrite takes a read hold and upgrades it until release.
	ReadThenWrite
	// ReadThenWriteThenRead takes a read hold, upgrades it for a region
	// and keeps reading after the region ends.
	ReadThenWriteThenRead
	// Write takes a write hold.
	Write
)

// Ops lists every Op in matrix order.
var Ops = [...]Op{Read, ReadThenWrite, ReadThenWriteThenRead, Write}

func (o Op) String() string {
	switch o {
	case Read:
		return "read"
	case ReadThenWrite:
		return "read_then_write"
	case ReadThenWriteThenRead:
		return "read_then_write_then_read"
	case Write:
		return "write"
	}
	return "invalid"
}

// Perform runs op against m. Time spent holding m for reading is tracked
// on shared and time spent holding it for writing on exclusive; work is
// called once per step while the hold is in place.
//
// An upgraded read hold still counts on shared, since the caller entered
// the shared section first and has not left it.
func Perform(m *rwmutex.RWMutex, op Op, shared, exclusive *Counter, work func()) {
	switch op {
	case Read:
		r := m.RLock()
		defer r.Unlock()
		defer shared.Track()()
		work()

	case ReadThenWrite:
		r := m.RLock()
		defer r.Unlock()
		defer shared.Track()()
		work()
		r.Upgrade()
		defer exclusive.Track()()
		work()

	case ReadThenWriteThenRead:
		r := m.RLock()
		defer r.Unlock()
		defer shared.Track()()
		work()
		r.Write(func() {
			defer exclusive.Track()()
			work()
		})
		work()

	case Write:
		w := m.Lock()
		defer w.Unlock()
		defer exclusive.Track()()
		work()

	default:
		panic("harness: unknown op")
	}
}
