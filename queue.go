package rwmutex

// Token identifies one participant for the lifetime of its hold.
// Tokens are issued by the lock in arrival order and never reused.
type Token uint64

// nodeID is a 1-based index into waitQueue.nodes. Zero means "no node",
// which keeps the zero waitQueue usable.
type nodeID int32

// waitNode is one participant record. It stays linked from the moment the
// participant starts acquiring until it releases, whatever mode it holds.
type waitNode struct {
	prev  nodeID
	next  nodeID
	token Token
}

// waitQueue is an arrival-ordered doubly linked list whose records live in
// an arena and link to each other by index. Freed slots are chained through
// next and reused by later pushes.
type waitQueue struct {
	nodes []waitNode
	head  nodeID
	tail  nodeID
	free  nodeID
	size  int
}

func (q *waitQueue) at(id nodeID) *waitNode {
	return &q.nodes[id-1]
}

// push links a record for t at the tail and returns its index.
func (q *waitQueue) push(t Token) nodeID {
	var id nodeID
	if q.free != 0 {
		id = q.free
		q.free = q.at(id).next
	} else {
		q.nodes = append(q.nodes, waitNode{})
		id = nodeID(len(q.nodes))
	}

	n := q.at(id)
	n.token = t
	n.next = 0
	n.prev = q.tail
	if q.tail != 0 {
		q.at(q.tail).next = id
	} else {
		q.head = id
	}
	q.tail = id
	q.size++
	return id
}

// remove unlinks id and returns its slot to the free list.
// It reports false if id does not hold a record for t.
func (q *waitQueue) remove(id nodeID, t Token) bool {
	if !q.holds(id, t) {
		return false
	}
	n := q.at(id)
	if n.prev != 0 {
		q.at(n.prev).next = n.next
	} else {
		q.head = n.next
	}
	if n.next != 0 {
		q.at(n.next).prev = n.prev
	} else {
		q.tail = n.prev
	}
	q.size--

	*n = waitNode{next: q.free}
	q.free = id
	return true
}

// holds reports whether id is a linked record belonging to t.
func (q *waitQueue) holds(id nodeID, t Token) bool {
	if id <= 0 || int(id) > len(q.nodes) || t == 0 {
		return false
	}
	return q.at(id).token == t
}

// first returns the token of the longest-waiting linked record, or zero.
func (q *waitQueue) first() Token {
	if q.head == 0 {
		return 0
	}
	return q.at(q.head).token
}

func (q *waitQueue) len() int {
	return q.size
}
