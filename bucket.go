package loadlimiter

import "sort"

// bucket is a time-aligned slot in a window, carrying the load
// submitted (or penalized) since its start.
type bucket struct {
	start int64 // unix seconds, a multiple of the owning limiter's stepPeriod
	load  float64
}

// bucketDeque is an ordered double-ended sequence of buckets, strictly
// increasing by start, supporting O(1) append at either end and
// positional middle-insert. It is backed by a power-of-two ring that
// doubles when full; penalty distribution relies on the front/middle
// insertion to synthesize buckets into gaps without reshuffling the
// rest of the window.
type bucketDeque struct {
	s    []bucket
	r, w uint
}

const bucketDequeInitialSize = 8

func newBucketDeque() *bucketDeque {
	return &bucketDeque{s: make([]bucket, bucketDequeInitialSize)}
}

func (x *bucketDeque) mask(val uint) uint {
	return val & (uint(len(x.s)) - 1)
}

func (x *bucketDeque) bounds() (i1, l1, l2 int) {
	if x.r == x.w {
		return
	}
	i1 = int(x.mask(x.r))
	l1 = int(x.mask(x.w))
	if l1 <= i1 {
		l2 = l1
		l1 = len(x.s)
	}
	return
}

func (x *bucketDeque) Len() int {
	return int(x.w - x.r)
}

func (x *bucketDeque) Get(i int) bucket {
	if i < 0 || i >= x.Len() {
		panic(`loadlimiter: bucket deque: get: index out of range`)
	}
	return x.s[x.mask(x.r+uint(i))]
}

func (x *bucketDeque) Set(i int, b bucket) {
	if i < 0 || i >= x.Len() {
		panic(`loadlimiter: bucket deque: set: index out of range`)
	}
	x.s[x.mask(x.r+uint(i))] = b
}

// Search returns the index of the first bucket whose start is >= start,
// or Len() if no such bucket exists.
func (x *bucketDeque) Search(start int64) int {
	return sort.Search(x.Len(), func(i int) bool {
		return x.Get(i).start >= start
	})
}

// RemoveFront drops the oldest n buckets from the sequence.
func (x *bucketDeque) RemoveFront(n int) {
	if n < 0 || n > x.Len() {
		panic(`loadlimiter: bucket deque: remove front: index out of range`)
	}
	x.r += uint(n)
}

// PushBack appends b as the newest bucket.
func (x *bucketDeque) PushBack(b bucket) {
	x.Insert(x.Len(), b)
}

// PushFront inserts b as the oldest bucket.
func (x *bucketDeque) PushFront(b bucket) {
	if x.Len() == len(x.s) {
		// full: Insert grows the buffer
		x.Insert(0, b)
		return
	}
	x.r--
	x.s[x.mask(x.r)] = b
}

// Insert places value at index, shifting later elements right,
// doubling the backing buffer first if it is full.
func (x *bucketDeque) Insert(index int, value bucket) {
	l := x.Len()
	if index < 0 || index > l {
		panic(`loadlimiter: bucket deque: insert: index out of range`)
	}

	if l == len(x.s) {
		// full, special case: requires expanding the buffer
		s := make([]bucket, uint(len(x.s))<<1)
		if len(s) == 0 {
			panic(`loadlimiter: bucket deque: insert: overflow`)
		}

		i1, l1, l2 := x.bounds()
		l = l1 - i1
		if index < l {
			copy(s, x.s[i1:i1+index])
			s[index] = value
			copy(s[index+1:], x.s[i1+index:l1])
			l++
			copy(s[l:], x.s[:l2])
			l += l2
		} else {
			copy(s, x.s[i1:l1])
			copy(s[l:], x.s[:index-l])
			s[index] = value
			copy(s[index+1:], x.s[index-l:l2])
			l += l2 + 1
		}

		x.r = 0
		x.w = uint(l)
		x.s = s
		return
	}

	var i, j int
	if l == 0 {
		x.r = 0
		x.w = 0
	} else {
		i = int(x.mask(x.r))
		j = int(x.mask(x.w))
	}

	if l == 0 || i < j {
		copy(x.s[i+index+1:], x.s[i+index:j])
		x.s[i+index] = value
		x.w++
		return
	}

	if index >= len(x.s)-i {
		index -= len(x.s) - i
		copy(x.s[index+1:], x.s[index:j])
		x.s[index] = value
		x.w++
		return
	}

	copy(x.s[1:], x.s[:j])
	x.s[0] = x.s[len(x.s)-1]
	copy(x.s[i+index+1:], x.s[i+index:])
	x.s[i+index] = value
	x.w++
}
