package lcpcomp

import (
	"fmt"
	"math"

	"github.com/ulikunitz/lz/suffix"
)

// TextIndex holds the suffix array, its inverse and the LCP array of a text
// of length n extended by an empty sentinel suffix. All three arrays have
// n+1 entries:
//
//	SA[0] == n               the sentinel sorts first
//	ISA[SA[i]] == i
//	LCP[i]                   common prefix of suffixes SA[i-1] and SA[i], LCP[0] == 0
//
// A TextIndex is read-only once built; the Factorizer borrows it.
type TextIndex struct {
	SA     []int32
	ISA    []int32
	LCP    []int32
	MaxLCP int
}

// NewTextIndex sorts the suffixes of text and derives ISA and LCP from the
// result.
func NewTextIndex(text []byte) (*TextIndex, error) {
	n := len(text)
	if n >= math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInputTooLarge, n)
	}

	idx := &TextIndex{
		SA:  make([]int32, n+1),
		ISA: make([]int32, n+1),
		LCP: make([]int32, n+1),
	}

	// The empty suffix is a prefix of every other suffix.
	idx.SA[0] = int32(n)
	if n > 0 {
		suffix.Sort(text, idx.SA[1:])
	}
	for i, p := range idx.SA {
		idx.ISA[p] = int32(i)
	}

	idx.buildLCP(text)
	return idx, nil
}

// buildLCP fills LCP with Kasai's algorithm: walking text positions in
// order, the common prefix with the preceding suffix shrinks by at most one
// per step.
func (x *TextIndex) buildLCP(text []byte) {
	n := len(text)
	h := 0
	for p := 0; p < n; p++ {
		r := x.ISA[p]
		j := int(x.SA[r-1])
		for p+h < n && j+h < n && text[p+h] == text[j+h] {
			h++
		}
		x.LCP[r] = int32(h)
		x.MaxLCP = max(x.MaxLCP, h)
		if h > 0 {
			h--
		}
	}
}

// Len returns the length of the indexed text, excluding the sentinel.
func (x *TextIndex) Len() int {
	return len(x.SA) - 1
}

// Validate checks the structural invariants the Factorizer relies on. It
// does not re-sort the text, so a permutation in the wrong order passes.
func (x *TextIndex) Validate() error {
	size := len(x.SA)
	if size == 0 || len(x.ISA) != size || len(x.LCP) != size {
		return fmt.Errorf("%w: array lengths sa=%d isa=%d lcp=%d", ErrInvalidIndex, len(x.SA), len(x.ISA), len(x.LCP))
	}
	if x.LCP[0] != 0 {
		return fmt.Errorf("%w: lcp[0] = %d", ErrInvalidIndex, x.LCP[0])
	}
	for i, p := range x.SA {
		if p < 0 || int(p) >= size {
			return fmt.Errorf("%w: sa[%d] = %d out of range", ErrInvalidIndex, i, p)
		}
		if int(x.ISA[p]) != i {
			return fmt.Errorf("%w: isa[sa[%d]] = %d", ErrInvalidIndex, i, x.ISA[p])
		}
	}
	for i, l := range x.LCP {
		if l < 0 || int(l) > x.MaxLCP {
			return fmt.Errorf("%w: lcp[%d] = %d outside [0, %d]", ErrInvalidIndex, i, l, x.MaxLCP)
		}
	}
	return nil
}
