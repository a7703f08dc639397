package rwmutex

import (
	"sync"

	"github.com/llxisdsh/pb"
)

// Group provides a promotable RWMutex per key.
//
// A key's lock is created on first use and dropped once the last hold on it
// is released, so the set of keys may be unbounded.
//
//	var g rwmutex.Group[string]
//
//	r := g.RLock("config")
//	defer r.Unlock()
//	r.Write(func() { update(config) })
//
// It is zero-value usable.
type Group[K comparable] struct {
	_    noCopy
	once sync.Once
	m    *pb.MapOf[K, *groupEntry]
}

type groupEntry struct {
	mu  RWMutex
	ref int32
}

// RLock returns a read hold on the lock for k.
func (g *Group[K]) RLock(k K) *Reader {
	e := g.ref(k)
	r := e.mu.RLock()
	r.done = func() { g.unref(k) }
	return r
}

// Lock returns a write hold on the lock for k.
func (g *Group[K]) Lock(k K) *Writer {
	e := g.ref(k)
	w := e.mu.Lock()
	w.done = func() { g.unref(k) }
	return w
}

// Stats returns a snapshot of the lock for k. It reports false if no hold
// on k is outstanding.
func (g *Group[K]) Stats(k K) (Stats, bool) {
	e, ok := g.entries().Load(k)
	if !ok {
		return Stats{}, false
	}
	return e.mu.Stats(), true
}

// entries returns the key map, creating it on first use. The map is built
// before it is shared, since pb's lazy init of a zero MapOf races when two
// goroutines hit it at once.
func (g *Group[K]) entries() *pb.MapOf[K, *groupEntry] {
	g.once.Do(func() {
		g.m = pb.NewMapOf[K, *groupEntry]()
	})
	return g.m
}

func (g *Group[K]) ref(k K) *groupEntry {
	e, _ := g.entries().ProcessEntry(
		k,
		func(l *pb.EntryOf[K, *groupEntry]) (*pb.EntryOf[K, *groupEntry], *groupEntry, bool) {
			if l != nil {
				l.Value.ref++
				return l, l.Value, true
			}
			e := &groupEntry{ref: 1}
			return &pb.EntryOf[K, *groupEntry]{Value: e}, e, false
		},
	)
	return e
}

func (g *Group[K]) unref(k K) {
	g.entries().ProcessEntry(
		k,
		func(l *pb.EntryOf[K, *groupEntry]) (*pb.EntryOf[K, *groupEntry], *groupEntry, bool) {
			if l == nil {
				return nil, nil, false
			}
			l.Value.ref--
			if l.Value.ref <= 0 {
				return nil, nil, true
			}
			return l, l.Value, true
		},
	)
}
