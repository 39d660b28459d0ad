package lcpcomp

import (
	"bytes"
	"errors"
	"runtime"
	"testing"

	"github.com/icza/bitio"
)

func TestBitsFor(t *testing.T) {
	tests := []struct {
		x    int
		want uint8
	}{
		{-3, 1}, {0, 1}, {1, 1}, {2, 2}, {3, 2}, {4, 3}, {255, 8}, {256, 9},
	}
	for _, tt := range tests {
		if got := bitsFor(tt.x); got != tt.want {
			t.Errorf("bitsFor(%d) = %d, want %d", tt.x, got, tt.want)
		}
	}
}

func TestCoderRoundTrip(t *testing.T) {
	for _, tt := range testTexts() {
		for _, header := range []bool{false, true} {
			for _, threshold := range []int{1, 2, 3, 8} {
				fb, err := FactorizeText(tt.data, threshold)
				if err != nil {
					t.Fatalf("%s: FactorizeText: %v", tt.name, err)
				}

				var buf bytes.Buffer
				opts := CoderOptions{Header: header}
				if err := encodeFactors(&buf, tt.data, fb, threshold, opts); err != nil {
					t.Fatalf("%s: encodeFactors: %v", tt.name, err)
				}
				got, err := decodeFactors(&buf, len(tt.data), opts)
				if err != nil {
					t.Fatalf("%s header=%v t=%d: decodeFactors: %v", tt.name, header, threshold, err)
				}
				if !bytes.Equal(got, tt.data) {
					t.Fatalf("%s header=%v t=%d: decoded %q", tt.name, header, threshold, got)
				}
			}
		}
	}
}

func TestDecodeFactorsOutOfRange(t *testing.T) {
	// Text of 4 symbols: a factor of length 4 at position 0 may only copy
	// from position 0, and src 3 runs past the end.
	var buf bytes.Buffer
	bw := bitio.NewWriter(&buf)
	bw.TryWriteBool(true)
	bw.TryWriteBits(3, bitsFor(4))
	bw.TryWriteBits(4, bitsFor(4))
	if bw.TryError != nil {
		t.Fatalf("write: %v", bw.TryError)
	}
	if err := bw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := decodeFactors(&buf, 4, CoderOptions{}); !errors.Is(err, ErrCorruptedData) {
		t.Fatalf("decodeFactors = %v, want ErrCorruptedData", err)
	}
}

func TestDecodeFactorsBadHeader(t *testing.T) {
	var buf bytes.Buffer
	bw := bitio.NewWriter(&buf)
	bw.TryWriteBits(0, thresholdBits) // threshold 0
	bw.TryWriteBits(3, widthBits)
	bw.TryWriteBits(3, widthBits)
	if err := bw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := decodeFactors(&buf, 4, CoderOptions{Header: true}); !errors.Is(err, ErrCorruptedData) {
		t.Fatalf("decodeFactors = %v, want ErrCorruptedData", err)
	}
}

func TestDecodeFactorsTruncated(t *testing.T) {
	text := []byte("literals only, nothing repeats here")
	fb := NewFactorBuffer(0)
	var buf bytes.Buffer
	if err := encodeFactors(&buf, text, fb, 3, CoderOptions{}); err != nil {
		t.Fatalf("encodeFactors: %v", err)
	}
	short := buf.Bytes()[:buf.Len()/2]

	if _, err := decodeFactors(bytes.NewReader(short), len(text), CoderOptions{}); !errors.Is(err, ErrCorruptedData) {
		t.Fatalf("decodeFactors = %v, want ErrCorruptedData", err)
	}
}

func TestResolveRefs(t *testing.T) {
	t.Run("forward chain", func(t *testing.T) {
		// 0 <- 1 <- 2, with 3 copying from 0 and 0 copying from the
		// literal at 4.
		out := []byte{0, 0, 0, 0, 'q'}
		ref := []int32{4, 0, 1, 0, -1}
		if err := resolveRefs(out, ref); err != nil {
			t.Fatalf("resolveRefs: %v", err)
		}
		if string(out) != "qqqqq" {
			t.Fatalf("out = %q, want %q", out, "qqqqq")
		}
	})

	t.Run("cycle", func(t *testing.T) {
		out := make([]byte, 3)
		ref := []int32{1, 2, 0}
		if err := resolveRefs(out, ref); !errors.Is(err, ErrCorruptedData) {
			t.Fatalf("resolveRefs = %v, want ErrCorruptedData", err)
		}
	})

	t.Run("self reference", func(t *testing.T) {
		out := make([]byte, 2)
		ref := []int32{-1, 1}
		if err := resolveRefs(out, ref); !errors.Is(err, ErrCorruptedData) {
			t.Fatalf("resolveRefs = %v, want ErrCorruptedData", err)
		}
	})
}

func TestDecodeFactorsLengthNotBackedByStream(t *testing.T) {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)

	// Three literals claiming a text of a billion symbols.
	var buf bytes.Buffer
	bw := bitio.NewWriter(&buf)
	for _, c := range []byte("abc") {
		bw.TryWriteBool(false)
		bw.TryWriteByte(c)
	}
	if err := bw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := decodeFactors(&buf, 1<<30, CoderOptions{}); !errors.Is(err, ErrCorruptedData) {
		t.Fatalf("decodeFactors = %v, want ErrCorruptedData", err)
	}

	runtime.ReadMemStats(&after)
	if grown := after.TotalAlloc - before.TotalAlloc; grown > 16<<20 {
		t.Fatalf("decoding a short stream allocated %d bytes", grown)
	}
}
