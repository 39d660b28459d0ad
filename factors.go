package lcpcomp

import "sort"

// Factor is a copy instruction: the Len symbols at Pos repeat the Len
// symbols at Src.
type Factor struct {
	Pos int
	Src int
	Len int
}

// End returns the first position after the copied span.
func (f Factor) End() int {
	return f.Pos + f.Len
}

// FactorBuffer is an append-only sequence of factors stored as three
// parallel arrays.
//
// The Factorizer appends in selection order, which is by length and not by
// position. Consumers that walk the text, such as LiteralView and the
// coder, need position order and call SortByPos once factorization is done.
type FactorBuffer struct {
	pos    []int32
	src    []int32
	length []int32
	sorted bool
}

// NewFactorBuffer returns an empty buffer with room for capacity factors.
func NewFactorBuffer(capacity int) *FactorBuffer {
	return &FactorBuffer{
		pos:    make([]int32, 0, capacity),
		src:    make([]int32, 0, capacity),
		length: make([]int32, 0, capacity),
		sorted: true,
	}
}

// Append adds f to the end of the buffer.
func (b *FactorBuffer) Append(f Factor) {
	if n := len(b.pos); n == 0 {
		b.sorted = true
	} else if int(b.pos[n-1]) > f.Pos {
		b.sorted = false
	}
	b.pos = append(b.pos, int32(f.Pos))
	b.src = append(b.src, int32(f.Src))
	b.length = append(b.length, int32(f.Len))
}

// Len returns the number of factors.
func (b *FactorBuffer) Len() int {
	return len(b.pos)
}

// At returns the i-th factor.
func (b *FactorBuffer) At(i int) Factor {
	return Factor{Pos: int(b.pos[i]), Src: int(b.src[i]), Len: int(b.length[i])}
}

// Factors returns a copy of the buffer's contents in current order.
func (b *FactorBuffer) Factors() []Factor {
	out := make([]Factor, b.Len())
	for i := range out {
		out[i] = b.At(i)
	}
	return out
}

// Covered returns the total number of positions covered by factors.
func (b *FactorBuffer) Covered() int {
	total := 0
	for _, l := range b.length {
		total += int(l)
	}
	return total
}

// Sorted reports whether the factors are in ascending position order.
func (b *FactorBuffer) Sorted() bool {
	return b.sorted || b.Len() < 2
}

// SortByPos puts the factors in ascending position order.
func (b *FactorBuffer) SortByPos() {
	if b.Sorted() {
		return
	}
	sort.Sort(byPos{b})
	b.sorted = true
}

// Reset empties the buffer, keeping its storage.
func (b *FactorBuffer) Reset() {
	b.pos = b.pos[:0]
	b.src = b.src[:0]
	b.length = b.length[:0]
	b.sorted = true
}

// byPos sorts the parallel arrays together.
type byPos struct{ *FactorBuffer }

func (s byPos) Less(i, j int) bool { return s.pos[i] < s.pos[j] }

func (s byPos) Swap(i, j int) {
	s.pos[i], s.pos[j] = s.pos[j], s.pos[i]
	s.src[i], s.src[j] = s.src[j], s.src[i]
	s.length[i], s.length[j] = s.length[j], s.length[i]
}
