package harness

import (
	"sync/atomic"

	"github.com/Helios-vmg/rwmutex/internal/opt"
)

// Counter tracks how many callers are inside a section at once and the
// highest such number seen.
//
// It is zero-value usable.
type Counter struct {
	cur opt.PaddedInt64
	max opt.PaddedInt64
}

// Enter records one more caller inside the section.
func (c *Counter) Enter() {
	n := atomic.AddInt64(&c.cur.V, 1)
	for {
		m := atomic.LoadInt64(&c.max.V)
		if n <= m || atomic.CompareAndSwapInt64(&c.max.V, m, n) {
			return
		}
	}
}

// Leave records one caller leaving the section.
func (c *Counter) Leave() {
	atomic.AddInt64(&c.cur.V, -1)
}

// Track calls Enter and returns Leave, for use with defer.
func (c *Counter) Track() func() {
	c.Enter()
	return c.Leave
}

// Current returns the number of callers inside the section.
func (c *Counter) Current() int {
	return int(atomic.LoadInt64(&c.cur.V))
}

// Max returns the highest number of callers seen inside at once.
func (c *Counter) Max() int {
	return int(atomic.LoadInt64(&c.max.V))
}
