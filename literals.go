package lcpcomp

import "iter"

// Literal is a text symbol not covered by any factor.
type Literal struct {
	Symbol byte
	Pos    int
}

// LiteralView walks a text and its position-sorted factors in lockstep and
// yields the uncovered symbols in text order. It is single pass; build a new
// view to walk again.
type LiteralView struct {
	text    []byte
	factors *FactorBuffer
	pos     int
	next    int // next factor not yet skipped
}

// NewLiteralView returns a view over text. factors is sorted by position
// in place if it is not already.
func NewLiteralView(text []byte, factors *FactorBuffer) *LiteralView {
	factors.SortByPos()
	v := &LiteralView{text: text, factors: factors}
	v.skipFactors()
	return v
}

// skipFactors jumps the cursor over every factor starting at it.
func (v *LiteralView) skipFactors() {
	for v.next < v.factors.Len() && v.pos == int(v.factors.pos[v.next]) {
		v.pos += int(v.factors.length[v.next])
		v.next++
	}
}

// HasNext reports whether another literal remains.
func (v *LiteralView) HasNext() bool {
	return v.pos < len(v.text)
}

// Next returns the next literal. It panics if HasNext is false.
func (v *LiteralView) Next() Literal {
	l := Literal{Symbol: v.text[v.pos], Pos: v.pos}
	v.pos++
	v.skipFactors()
	return l
}

// All returns an iterator over the remaining literals.
func (v *LiteralView) All() iter.Seq[Literal] {
	return func(yield func(Literal) bool) {
		for v.HasNext() {
			if !yield(v.Next()) {
				return
			}
		}
	}
}
