package lcpcomp

import (
	"fmt"
	"io"
	"math/bits"

	"github.com/icza/bitio"
)

// CoderOptions is passed through from the configuration to the factor
// coder.
type CoderOptions struct {
	// Header writes the threshold and the field widths ahead of the
	// factors, which lets lengths be stored relative to the threshold in
	// as few bits as the longest factor needs. Without it both fields use
	// bitsFor(n) bits.
	Header bool
}

// Header field widths.
const (
	thresholdBits = 32
	widthBits     = 6
)

// bitsFor returns the number of bits needed to store x, at least one.
func bitsFor(x int) uint8 {
	if x < 1 {
		return 1
	}
	return uint8(bits.Len(uint(x)))
}

// coderParams are the field widths shared by encoder and decoder.
type coderParams struct {
	base    int // subtracted from factor lengths
	srcBits uint8
	lenBits uint8
}

func defaultParams(n int) coderParams {
	return coderParams{srcBits: bitsFor(n), lenBits: bitsFor(n)}
}

// encodeFactors writes text as a bit stream of factors and literals in text
// order. factors is sorted by position first.
//
//	factor:  1 src:srcBits len-base:lenBits
//	literal: 0 symbol:8
func encodeFactors(w io.Writer, text []byte, factors *FactorBuffer, threshold int, opts CoderOptions) error {
	factors.SortByPos()
	n := len(text)

	p := defaultParams(n)
	bw := bitio.NewWriter(w)
	if opts.Header {
		longest := 0
		for i := 0; i < factors.Len(); i++ {
			longest = max(longest, factors.At(i).Len)
		}
		p.base = threshold
		p.lenBits = bitsFor(longest - threshold)
		bw.TryWriteBits(uint64(threshold), thresholdBits)
		bw.TryWriteBits(uint64(p.srcBits), widthBits)
		bw.TryWriteBits(uint64(p.lenBits), widthBits)
	}

	next := 0
	for pos := 0; pos < n; {
		if next < factors.Len() && int(factors.pos[next]) == pos {
			f := factors.At(next)
			next++
			bw.TryWriteBool(true)
			bw.TryWriteBits(uint64(f.Src), p.srcBits)
			bw.TryWriteBits(uint64(f.Len-p.base), p.lenBits)
			pos += f.Len
			continue
		}
		bw.TryWriteBool(false)
		bw.TryWriteByte(text[pos])
		pos++
	}

	if bw.TryError != nil {
		return bw.TryError
	}
	return bw.Close()
}

// decodeFactors reads a stream written by encodeFactors for a text of
// length n and reconstructs the text.
func decodeFactors(r io.Reader, n int, opts CoderOptions) ([]byte, error) {
	p := defaultParams(n)
	br := bitio.NewReader(r)
	if opts.Header {
		threshold := br.TryReadBits(thresholdBits)
		p.srcBits = uint8(br.TryReadBits(widthBits))
		p.lenBits = uint8(br.TryReadBits(widthBits))
		if br.TryError != nil {
			return nil, fmt.Errorf("%w: coder header: %v", ErrCorruptedData, br.TryError)
		}
		if threshold < 1 || p.srcBits == 0 || p.lenBits == 0 {
			return nil, fmt.Errorf("%w: coder header threshold=%d src=%d len=%d", ErrCorruptedData, threshold, p.srcBits, p.lenBits)
		}
		p.base = int(threshold)
	}

	// The stream is parsed into literals and factor records before the text
	// is materialized, so a length field the payload cannot back fails
	// without allocating n bytes.
	var literals []byte
	factors := NewFactorBuffer(0)
	for pos := 0; pos < n; {
		if !br.TryReadBool() {
			b := br.TryReadByte()
			if br.TryError != nil {
				break
			}
			literals = append(literals, b)
			pos++
			continue
		}
		src := int(br.TryReadBits(p.srcBits))
		length := int(br.TryReadBits(p.lenBits)) + p.base
		if br.TryError != nil {
			break
		}
		if length < 1 || length > n-pos || src < 0 || src > n-length {
			return nil, fmt.Errorf("%w: factor pos=%d src=%d len=%d in text of %d", ErrCorruptedData, pos, src, length, n)
		}
		factors.Append(Factor{Pos: pos, Src: src, Len: length})
		pos += length
	}
	if br.TryError != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptedData, br.TryError)
	}

	out := make([]byte, n)
	// ref[i] is the position i copies from, or -1 once out[i] is known.
	ref := make([]int32, n)
	pos, next := 0, 0
	for i := 0; i < factors.Len(); i++ {
		f := factors.At(i)
		for ; pos < f.Pos; pos++ {
			out[pos] = literals[next]
			ref[pos] = -1
			next++
		}
		for k := 0; k < f.Len; k++ {
			ref[pos+k] = int32(f.Src + k)
		}
		pos += f.Len
	}
	for ; pos < n; pos++ {
		out[pos] = literals[next]
		ref[pos] = -1
		next++
	}

	if err := resolveRefs(out, ref); err != nil {
		return nil, err
	}
	return out, nil
}

// resolveRefs fills every copied position by following its reference chain
// down to a literal. Sources may lie before or after the copy, so chains are
// walked explicitly rather than in text order.
func resolveRefs(out []byte, ref []int32) error {
	visiting := make([]bool, len(ref))
	var chain []int32
	for p := range ref {
		x := int32(p)
		for ref[x] >= 0 {
			if visiting[x] {
				return fmt.Errorf("%w: reference cycle through position %d", ErrCorruptedData, x)
			}
			visiting[x] = true
			chain = append(chain, x)
			x = ref[x]
		}
		for i := len(chain) - 1; i >= 0; i-- {
			c := chain[i]
			out[c] = out[ref[c]]
			ref[c] = -1
		}
		chain = chain[:0]
	}
	return nil
}
