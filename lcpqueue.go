package lcpcomp

import "fmt"

// nilIndex terminates a bucket list.
const nilIndex int32 = -1

// LCPQueue is a max-priority structure over suffix array indices keyed by
// their effective LCP value.
//
// Entries live in buckets, one per key in [threshold, maxLCP]. Each bucket
// is a doubly linked list threaded through three arrays indexed by suffix
// array position, so unlinking and relinking an index never allocates:
//
//	key[i]       current key of i, 0 when i is not in the queue
//	prev[i]      predecessor of i in its bucket, or nilIndex
//	next[i]      successor of i in its bucket, or nilIndex
//	head[k-t]    first index of bucket k, or nilIndex
//
// Keys only ever decrease and removed entries never come back, so the
// pointer to the highest non-empty bucket moves downward only and its total
// movement over the queue's lifetime is bounded by the number of buckets.
//
// Ties are broken LIFO: Max returns the index most recently linked into the
// highest bucket. Construction links indices in ascending order.
//
// An LCPQueue is owned by a single factorization run and is not safe for
// concurrent use.
type LCPQueue struct {
	threshold int
	top       int // key of the highest bucket that may be non-empty
	size      int

	key  []int32
	prev []int32
	next []int32
	head []int32
}

// NewLCPQueue builds a queue holding every index i with lcp[i] >= threshold.
// maxLCP must be at least the largest value in lcp.
func NewLCPQueue(lcp []int32, threshold, maxLCP int) (*LCPQueue, error) {
	if threshold < 1 {
		return nil, ErrInvalidThreshold
	}

	n := len(lcp)
	q := &LCPQueue{
		threshold: threshold,
		top:       threshold - 1,
		key:       make([]int32, n),
		prev:      make([]int32, n),
		next:      make([]int32, n),
	}
	if maxLCP >= threshold {
		q.head = make([]int32, maxLCP-threshold+1)
		for k := range q.head {
			q.head[k] = nilIndex
		}
	}

	for i, k := range lcp {
		q.prev[i] = nilIndex
		q.next[i] = nilIndex
		if int(k) < threshold {
			continue
		}
		if int(k) > maxLCP {
			return nil, fmt.Errorf("%w: lcp[%d] = %d exceeds max lcp %d", ErrInvalidIndex, i, k, maxLCP)
		}
		q.link(int32(i), k)
		q.size++
		q.top = max(q.top, int(k))
	}

	return q, nil
}

// Len returns the number of live entries.
func (q *LCPQueue) Len() int {
	return q.size
}

// Threshold returns the smallest key the queue admits.
func (q *LCPQueue) Threshold() int {
	return q.threshold
}

// Contains reports whether i is currently in the queue.
func (q *LCPQueue) Contains(i int) bool {
	return i >= 0 && i < len(q.key) && q.key[i] != 0
}

// Key returns the current key of i, or 0 if i is not in the queue.
func (q *LCPQueue) Key(i int) int {
	if !q.Contains(i) {
		return 0
	}
	return int(q.key[i])
}

// Max returns, without removing it, an index holding the largest key.
func (q *LCPQueue) Max() (int, error) {
	if q.size == 0 {
		return 0, ErrEmptyQueue
	}
	return int(q.head[q.top-q.threshold]), nil
}

// Remove unlinks i from the queue.
func (q *LCPQueue) Remove(i int) error {
	if !q.Contains(i) {
		return fmt.Errorf("%w: remove %d", ErrNotPresent, i)
	}
	q.unlink(int32(i))
	q.key[i] = 0
	q.size--
	q.settle()
	return nil
}

// DecreaseKey moves i to the bucket for key. A key below the threshold
// drops i from the queue.
func (q *LCPQueue) DecreaseKey(i, key int) error {
	if !q.Contains(i) {
		return fmt.Errorf("%w: decrease key of %d", ErrNotPresent, i)
	}
	if key >= int(q.key[i]) {
		return fmt.Errorf("%w: %d -> %d for index %d", ErrInvalidKeyDecrease, q.key[i], key, i)
	}
	if key < q.threshold {
		return q.Remove(i)
	}

	q.unlink(int32(i))
	q.link(int32(i), int32(key))
	q.settle()
	return nil
}

// link pushes i onto the front of the bucket for k.
func (q *LCPQueue) link(i, k int32) {
	b := int(k) - q.threshold
	first := q.head[b]
	q.key[i] = k
	q.prev[i] = nilIndex
	q.next[i] = first
	if first != nilIndex {
		q.prev[first] = i
	}
	q.head[b] = i
}

// unlink detaches i from its bucket. key[i] is left untouched.
func (q *LCPQueue) unlink(i int32) {
	p, n := q.prev[i], q.next[i]
	if p != nilIndex {
		q.next[p] = n
	} else {
		q.head[int(q.key[i])-q.threshold] = n
	}
	if n != nilIndex {
		q.prev[n] = p
	}
	q.prev[i] = nilIndex
	q.next[i] = nilIndex
}

// settle lowers top past drained buckets.
func (q *LCPQueue) settle() {
	if q.size == 0 {
		q.top = q.threshold - 1
		return
	}
	for q.head[q.top-q.threshold] == nilIndex {
		q.top--
	}
}
