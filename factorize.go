package lcpcomp

import "fmt"

// Hooks are optional callbacks invoked by a Factorizer. Nil fields are
// skipped.
type Hooks struct {
	// OnQueueBuilt receives the number of candidate entries once the
	// LCPQueue has been constructed.
	OnQueueBuilt func(entries int)
	// OnFactorEmitted receives every factor in emission order.
	OnFactorEmitted func(f Factor)
}

// Factorizer runs the greedy max-LCP factorization: repeatedly take the
// suffix with the longest remaining LCP, emit it as a copy of its
// lexicographic predecessor, then discard or shorten every candidate that
// would overlap the new factor.
type Factorizer struct {
	threshold int
	hooks     Hooks
}

// NewFactorizer returns a Factorizer that emits factors of at least
// threshold symbols. hooks may be nil.
func NewFactorizer(threshold int, hooks *Hooks) (*Factorizer, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidThreshold, threshold)
	}
	fz := &Factorizer{threshold: threshold}
	if hooks != nil {
		fz.hooks = *hooks
	}
	return fz, nil
}

// Threshold returns the minimum factor length.
func (fz *Factorizer) Threshold() int {
	return fz.threshold
}

// Factorize appends the factors of the text described by idx to out in
// selection order. idx is only read. Uncovered positions are literals and
// are not reported here; see LiteralView.
func (fz *Factorizer) Factorize(idx *TextIndex, out *FactorBuffer) error {
	q, err := NewLCPQueue(idx.LCP, fz.threshold, idx.MaxLCP)
	if err != nil {
		return err
	}
	if fz.hooks.OnQueueBuilt != nil {
		fz.hooks.OnQueueBuilt(q.Len())
	}

	sa, isa := idx.SA, idx.ISA
	for q.Len() > 0 {
		m := must(q.Max())
		f := Factor{
			Pos: int(sa[m]),
			Src: int(sa[m-1]),
			Len: q.Key(m),
		}
		out.Append(f)
		if fz.hooks.OnFactorEmitted != nil {
			fz.hooks.OnFactorEmitted(f)
		}

		// No suffix starting inside the factor may be selected later. This
		// removes m itself at k == 0.
		for k := 0; k < f.Len; k++ {
			if i := int(isa[f.Pos+k]); q.Contains(i) {
				check(q.Remove(i))
			}
		}

		// Suffixes starting up to f.Len positions before the factor may
		// run into it; cut them off at f.Pos. Anything further left has a
		// key no larger than f.Len and cannot reach.
		for k := 0; k < f.Len && f.Pos > k; k++ {
			s := f.Pos - k - 1
			i := int(isa[s])
			if !q.Contains(i) || s+q.Key(i) <= f.Pos {
				continue
			}
			if l := f.Pos - s; l >= fz.threshold {
				check(q.DecreaseKey(i, l))
			} else {
				check(q.Remove(i))
			}
		}
	}
	return nil
}

// FactorizeText indexes text and factorizes it with the given threshold.
// The returned buffer is sorted by position.
func FactorizeText(text []byte, threshold int) (*FactorBuffer, error) {
	fz, err := NewFactorizer(threshold, nil)
	if err != nil {
		return nil, err
	}
	idx, err := NewTextIndex(text)
	if err != nil {
		return nil, err
	}
	out := NewFactorBuffer(0)
	if err := fz.Factorize(idx, out); err != nil {
		return nil, err
	}
	out.SortByPos()
	return out, nil
}

// must and check turn queue errors into panics. They only fire when the
// index handed to Factorize breaks the TextIndex invariants.
func must(i int, err error) int {
	check(err)
	return i
}

func check(err error) {
	if err != nil {
		panic(fmt.Sprintf("lcpcomp: factorization invariant violated: %v", err))
	}
}
