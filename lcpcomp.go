package lcpcomp

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
)

// Algorithm names the general-purpose backend that wraps the factor
// stream.
type Algorithm string

const (
	AlgorithmNone   Algorithm = "none"
	AlgorithmGzip   Algorithm = "gzip"
	AlgorithmZstd   Algorithm = "zstd"
	AlgorithmLZ4    Algorithm = "lz4"
	AlgorithmBrotli Algorithm = "brotli"
	AlgorithmSnappy Algorithm = "snappy"
	AlgorithmXZ     Algorithm = "xz"
)

// DefaultThreshold is the minimum factor length used when none is set.
const DefaultThreshold = 3

// Config holds compressor and filesystem configuration.
type Config struct {
	// Threshold is the minimum factor length. Repeats shorter than this
	// are left as literals. Must be at least 1 (default 3).
	Threshold int

	// Algorithm wraps the factor stream (default: none)
	Algorithm Algorithm

	// Backend level, 0 selects the backend default
	// gzip: 1-9
	// zstd: 1-22
	// lz4: 1-9
	// brotli: 1-11
	// none, snappy, xz: ignored
	Level int

	// Header records threshold and field widths in the stream so lengths
	// are coded compactly (default: true)
	Header bool

	// Hooks observe factorization. Optional.
	Hooks *Hooks

	// Skip patterns - regex patterns for files stored uncompressed
	SkipPatterns []string

	// Strip the .lcp extension on reads (transparent)
	StripExtension bool // default: true

	// Initial capacity of a file's write buffer (default: 64KB)
	BufferSize int

	// Minimum file size to compress (skip smaller files)
	MinSize int64 // default: 0 (compress all)
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Threshold:      DefaultThreshold,
		Algorithm:      AlgorithmNone,
		Level:          0,
		Header:         true,
		StripExtension: true,
		BufferSize:     64 * 1024, // 64KB
		MinSize:        0,
	}
}

// levelRanges lists the accepted non-default levels per backend. Backends
// not listed ignore the level.
var levelRanges = map[Algorithm][2]int{
	AlgorithmGzip:   {1, 9},
	AlgorithmZstd:   {1, 22},
	AlgorithmLZ4:    {1, 9},
	AlgorithmBrotli: {1, 11},
}

// Validate checks the threshold, algorithm and level.
func (c *Config) Validate() error {
	if c.Threshold < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidThreshold, c.Threshold)
	}
	if _, ok := algorithmIDs[c.Algorithm]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, c.Algorithm)
	}
	if r, ok := levelRanges[c.Algorithm]; ok && c.Level != 0 {
		if c.Level < r[0] || c.Level > r[1] {
			return fmt.Errorf("%w: %s level %d outside %d-%d", ErrInvalidLevel, c.Algorithm, c.Level, r[0], r[1])
		}
	}
	return nil
}

// coderOptions derives the coder pass-through record.
func (c *Config) coderOptions() CoderOptions {
	return CoderOptions{Header: c.Header}
}

// Stats holds compression statistics
type Stats struct {
	FilesCompressed   int64
	FilesDecompressed int64
	FilesSkipped      int64

	BytesRead         int64
	BytesWritten      int64
	BytesCompressed   int64
	BytesDecompressed int64

	// Factorization totals across compressed files
	Factors  int64
	Literals int64

	AlgorithmCounts sync.Map // map[Algorithm]*atomic.Int64
}

// GetAlgorithmCount returns the count for a specific algorithm
func (s *Stats) GetAlgorithmCount(algo Algorithm) int64 {
	if val, ok := s.AlgorithmCounts.Load(algo); ok {
		return val.(*atomic.Int64).Load()
	}
	return 0
}

// IncrementAlgorithmCount increments the count for a specific algorithm
func (s *Stats) IncrementAlgorithmCount(algo Algorithm) {
	val, _ := s.AlgorithmCounts.LoadOrStore(algo, new(atomic.Int64))
	val.(*atomic.Int64).Add(1)
}

// TotalCompressionRatio returns compressed bytes over original bytes for
// everything written so far.
func (s *Stats) TotalCompressionRatio() float64 {
	if s.BytesWritten == 0 {
		return 0
	}
	return float64(s.BytesCompressed) / float64(s.BytesWritten)
}

// LiteralRatio returns the share of compressed input left as literals.
func (s *Stats) LiteralRatio() float64 {
	if s.BytesWritten == 0 {
		return 0
	}
	return float64(s.Literals) / float64(s.BytesWritten)
}

// compileSkipPatterns joins patterns into one alternation.
func compileSkipPatterns(patterns []string) (*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	return regexp.Compile("(?:" + strings.Join(patterns, "|") + ")")
}
