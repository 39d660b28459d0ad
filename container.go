package lcpcomp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Container layout:
//
//	magic    "LCPC"
//	version  1 byte
//	backend  1 byte, see algorithmIDs
//	flags    1 byte, flagHeader
//	length   uvarint, original size
//	payload  factor stream wrapped by the backend
const (
	containerVersion byte = 1
	flagHeader       byte = 1 << 0
)

var containerMagic = []byte("LCPC")

// containerHeader is the decoded fixed part of a container.
type containerHeader struct {
	algo  Algorithm
	flags byte
	size  int
}

func (h containerHeader) appendTo(dst []byte) []byte {
	dst = append(dst, containerMagic...)
	dst = append(dst, containerVersion, algorithmIDs[h.algo], h.flags)
	return binary.AppendUvarint(dst, uint64(h.size))
}

// parseContainerHeader decodes the header and returns the payload that
// follows it.
func parseContainerHeader(data []byte) (containerHeader, []byte, error) {
	var h containerHeader
	if len(data) < len(containerMagic)+3 || !bytes.Equal(data[:len(containerMagic)], containerMagic) {
		return h, nil, ErrNotCompressed
	}
	data = data[len(containerMagic):]
	if data[0] != containerVersion {
		return h, nil, fmt.Errorf("%w: %d", ErrBadVersion, data[0])
	}
	algo, ok := algorithmByID(data[1])
	if !ok {
		return h, nil, fmt.Errorf("%w: backend id %d", ErrUnsupportedAlgorithm, data[1])
	}
	h.algo = algo
	h.flags = data[2]
	data = data[3:]

	size, n := binary.Uvarint(data)
	if n <= 0 || size >= math.MaxInt32 {
		return h, nil, fmt.Errorf("%w: bad length field", ErrCorruptedData)
	}
	h.size = int(size)
	return h, data[n:], nil
}

// Compress factorizes data and encodes it into a container. cfg may be nil.
func Compress(data []byte, cfg *Config) ([]byte, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factors, err := factorize(data, cfg)
	if err != nil {
		return nil, err
	}

	var stream bytes.Buffer
	opts := cfg.coderOptions()
	if err := encodeFactors(&stream, data, factors, cfg.Threshold, opts); err != nil {
		return nil, fmt.Errorf("lcpcomp: encode factors: %w", err)
	}

	h := containerHeader{algo: cfg.Algorithm, size: len(data)}
	if opts.Header {
		h.flags |= flagHeader
	}
	out := bytes.NewBuffer(h.appendTo(make([]byte, 0, stream.Len()/2+16)))

	compressor, err := createCompressor(cfg.Algorithm, out, cfg.Level)
	if err != nil {
		return nil, err
	}
	if _, err := compressor.Write(stream.Bytes()); err != nil {
		compressor.Close()
		return nil, fmt.Errorf("lcpcomp: %s: %w", cfg.Algorithm, err)
	}
	if err := compressor.Close(); err != nil {
		return nil, fmt.Errorf("lcpcomp: %s: %w", cfg.Algorithm, err)
	}
	return out.Bytes(), nil
}

// factorize runs index construction and factorization with cfg's hooks.
func factorize(data []byte, cfg *Config) (*FactorBuffer, error) {
	fz, err := NewFactorizer(cfg.Threshold, cfg.Hooks)
	if err != nil {
		return nil, err
	}
	idx, err := NewTextIndex(data)
	if err != nil {
		return nil, err
	}
	factors := NewFactorBuffer(0)
	if err := fz.Factorize(idx, factors); err != nil {
		return nil, err
	}
	factors.SortByPos()
	return factors, nil
}

// Decompress decodes a container produced by Compress.
func Decompress(data []byte) ([]byte, error) {
	h, payload, err := parseContainerHeader(data)
	if err != nil {
		return nil, err
	}

	decompressor, err := createDecompressor(h.algo, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptedData, h.algo, err)
	}
	defer decompressor.Close()

	stream, err := io.ReadAll(decompressor)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptedData, h.algo, err)
	}
	return decodeFactors(bytes.NewReader(stream), h.size, CoderOptions{Header: h.flags&flagHeader != 0})
}
