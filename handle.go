package rwmutex

type holdMode uint8

const (
	modeReleased holdMode = iota
	modeRead
	modeWrite
)

// Reader is a read hold on an RWMutex, obtained from RLock. It can be
// upgraded to a write hold and downgraded back any number of times.
//
// A Reader belongs to the goroutine that obtained it and must not be used
// concurrently.
type Reader struct {
	m     *RWMutex
	id    nodeID
	token Token
	mode  holdMode
	done  func()
}

// RLock blocks until no writer holds m and returns a read hold.
// Waiting writers do not delay it.
//
// RLock must not be called while the caller already holds m.
func (m *RWMutex) RLock() *Reader {
	id, t := m.acquireRead()
	return &Reader{m: m, id: id, token: t, mode: modeRead}
}

// Token returns the participant token identifying this hold.
func (r *Reader) Token() Token {
	return r.token
}

// Upgraded reports whether r currently holds m for writing.
func (r *Reader) Upgraded() bool {
	return r.mode == modeWrite
}

// Upgrade converts the read hold into a write hold. It blocks until r is
// the longest-held participant and every plain reader has left.
//
// Writers that queued after r cannot run before Upgrade returns. A writer
// that queued before r, or another Reader upgrading at the same time, may
// hold the lock first, so state read before Upgrade must be re-read.
//
// It panics if r is already upgraded or released.
func (r *Reader) Upgrade() {
	switch r.mode {
	case modeWrite:
		panic("rwmutex: Upgrade of upgraded Reader")
	case modeReleased:
		panic("rwmutex: Upgrade of released Reader")
	}
	r.m.promote(r.id, r.token)
	r.mode = modeWrite
}

// Downgrade converts an upgraded hold back into a read hold, letting other
// readers in. The queue position of r is unchanged.
//
// It panics if r is not upgraded.
func (r *Reader) Downgrade() {
	if r.mode != modeWrite {
		panic("rwmutex: Downgrade of Reader that is not upgraded")
	}
	r.m.demote(r.id, r.token)
	r.mode = modeRead
}

// Unlock releases r in whichever mode it currently holds.
// Calling Unlock on a released Reader does nothing.
func (r *Reader) Unlock() {
	switch r.mode {
	case modeRead:
		r.m.releaseRead(r.id, r.token)
	case modeWrite:
		r.m.releaseWrite(r.id, r.token)
	default:
		return
	}
	r.mode = modeReleased
	if r.done != nil {
		r.done()
	}
}

// BeginWrite upgrades r and returns a region whose End downgrades it again.
//
//	w := r.BeginWrite()
//	defer w.End()
func (r *Reader) BeginWrite() *WriteRegion {
	r.Upgrade()
	return &WriteRegion{r: r}
}

// Write runs fn with r upgraded and downgrades r when fn returns or panics.
func (r *Reader) Write(fn func()) {
	defer r.BeginWrite().End()
	fn()
}

// WriteRegion is a span during which a Reader is upgraded.
type WriteRegion struct {
	r     *Reader
	ended bool
}

// End downgrades the Reader back to a read hold. Later calls do nothing.
func (w *WriteRegion) End() {
	if w.ended {
		return
	}
	w.ended = true
	w.r.Downgrade()
}

// Writer is an exclusive hold on an RWMutex, obtained from Lock.
type Writer struct {
	m     *RWMutex
	id    nodeID
	token Token
	held  bool
	done  func()
}

// Lock queues for exclusive ownership of m and blocks until every earlier
// participant has left and no reader holds m.
//
// Lock must not be called while the caller already holds m.
func (m *RWMutex) Lock() *Writer {
	id, t := m.acquireWrite()
	return &Writer{m: m, id: id, token: t, held: true}
}

// Token returns the participant token identifying this hold.
func (w *Writer) Token() Token {
	return w.token
}

// Unlock releases w. Calling Unlock on a released Writer does nothing.
func (w *Writer) Unlock() {
	if !w.held {
		return
	}
	w.held = false
	w.m.releaseWrite(w.id, w.token)
	if w.done != nil {
		w.done()
	}
}
