// Package rwmutex provides a reader-writer lock whose read holds can be
// promoted to write holds, and demoted back, without ever passing through
// an unlocked state.
//
// Acquisitions are represented by handles:
//
//	var mu rwmutex.RWMutex
//
//	r := mu.RLock()
//	defer r.Unlock()
//	if stale(cache) {
//		r.Write(func() {
//			// Re-check: an earlier writer, or another reader upgrading
//			// at the same time, may have refreshed it already.
//			if stale(cache) {
//				refresh(cache)
//			}
//		})
//	}
//
// An upgrade keeps its original queue position, so no writer that queued
// after the reader can run before the upgrade completes. Writers that
// queued earlier, and other readers upgrading concurrently, can; anything
// read before Upgrade must be read again after it.
//
// Writers are granted in arrival order among themselves. Readers are not
// held back by waiting writers: a reader is admitted whenever no writer
// currently holds the lock, so a steady stream of readers can delay a
// queued writer indefinitely.
package rwmutex

import (
	"sync"
)

// State is the ownership mode of an RWMutex.
type State uint8

const (
	Unlocked State = iota
	ReadLocked
	WriteLocked
)

func (s State) String() string {
	switch s {
	case Unlocked:
		return "unlocked"
	case ReadLocked:
		return "read-locked"
	case WriteLocked:
		return "write-locked"
	}
	return "invalid"
}

// RWMutex is a promotable reader-writer lock.
//
// Every participant, reading or writing, is linked into a single arrival
// queue for as long as it holds or waits. A writer (or a reader being
// promoted) is granted once it is the head of that queue and every other
// linked participant is also contending for write, which means all plain
// readers have drained.
//
// It is zero-value usable. An RWMutex must not be copied after first use.
type RWMutex struct {
	_ noCopy

	mu   sync.Mutex
	cond sync.Cond

	state State
	queue waitQueue
	// writers counts participants between the start of a write or
	// promotion request and its grant.
	writers int
	tickets Token
}

// Stats is a snapshot of an RWMutex's bookkeeping.
type Stats struct {
	State      State
	Queued     int // participants holding or waiting
	Contending int // participants waiting for write
}

// Stats returns a consistent snapshot of the lock's state.
func (m *RWMutex) Stats() Stats {
	m.lock()
	defer m.mu.Unlock()
	return Stats{
		State:      m.state,
		Queued:     m.queue.len(),
		Contending: m.writers,
	}
}

func (m *RWMutex) lock() {
	m.mu.Lock()
	if m.cond.L == nil {
		m.cond.L = &m.mu
	}
}

// enqueue links a new participant at the tail. m.mu must be held.
func (m *RWMutex) enqueue() (nodeID, Token) {
	m.tickets++
	t := m.tickets
	return m.queue.push(t), t
}

func (m *RWMutex) dequeue(id nodeID, t Token) {
	if !m.queue.remove(id, t) {
		m.mu.Unlock()
		panic("rwmutex: release of unknown participant")
	}
}

func (m *RWMutex) acquireRead() (nodeID, Token) {
	m.lock()
	id, t := m.enqueue()
	for m.state == WriteLocked {
		m.cond.Wait()
	}
	m.state = ReadLocked
	m.mu.Unlock()
	return id, t
}

func (m *RWMutex) releaseRead(id nodeID, t Token) {
	m.lock()
	m.dequeue(id, t)
	if m.queue.len() == 0 {
		m.state = Unlocked
	}
	m.cond.Broadcast()
	m.mu.Unlock()
}

func (m *RWMutex) acquireWrite() (nodeID, Token) {
	m.lock()
	id, t := m.enqueue()
	m.contend(t)
	m.mu.Unlock()
	return id, t
}

// releaseWrite leaves the lock read-locked when others are still queued.
// That label is provisional: whoever is next re-checks its own condition.
func (m *RWMutex) releaseWrite(id nodeID, t Token) {
	m.lock()
	m.dequeue(id, t)
	if m.queue.len() != 0 {
		m.state = ReadLocked
	} else {
		m.state = Unlocked
	}
	m.cond.Broadcast()
	m.mu.Unlock()
}

// promote turns the read hold of t into a write hold. The record stays
// linked throughout, so t keeps its original queue position.
func (m *RWMutex) promote(id nodeID, t Token) {
	m.lock()
	if !m.queue.holds(id, t) {
		m.mu.Unlock()
		panic("rwmutex: Upgrade of unknown participant")
	}
	m.contend(t)
	m.mu.Unlock()
}

func (m *RWMutex) demote(id nodeID, t Token) {
	m.lock()
	if !m.queue.holds(id, t) {
		m.mu.Unlock()
		panic("rwmutex: Downgrade of unknown participant")
	}
	m.state = ReadLocked
	m.cond.Broadcast()
	m.mu.Unlock()
}

// contend registers t as a write contender and waits until it may take
// exclusive ownership. m.mu must be held; it is held again on return.
func (m *RWMutex) contend(t Token) {
	m.writers++
	// A promoting reader may be waiting for the count to catch up.
	m.cond.Broadcast()
	for m.queue.first() != t {
		m.cond.Wait()
	}
	// Wait for plain readers to drain. The Unlocked case cannot arise
	// while t is linked but is kept as an exit condition.
	for m.queue.len() > m.writers && m.state != Unlocked {
		m.cond.Wait()
	}
	m.writers--
	m.state = WriteLocked
}
