package lcpcomp

import "errors"

// LCPQueue errors. All of them signal a caller bug; the Factorizer never
// triggers them on a well-formed TextIndex.
var (
	// ErrEmptyQueue is returned by Max on a queue with no live entries.
	ErrEmptyQueue = errors.New("lcpcomp: lcp queue is empty")
	// ErrInvalidKeyDecrease is returned when DecreaseKey is asked to raise
	// or keep an entry's key. Decreasing below the threshold is not an
	// error: it removes the entry.
	ErrInvalidKeyDecrease = errors.New("lcpcomp: new key must be less than current key")
	// ErrNotPresent is returned by Remove and DecreaseKey for an index that
	// is not in the queue.
	ErrNotPresent = errors.New("lcpcomp: index not present in lcp queue")
)

// Configuration and container errors.
var (
	ErrUnsupportedAlgorithm = errors.New("lcpcomp: unsupported compression algorithm")
	ErrInvalidLevel         = errors.New("lcpcomp: invalid compression level")
	ErrInvalidThreshold     = errors.New("lcpcomp: threshold must be at least 1")
	ErrCorruptedData        = errors.New("lcpcomp: corrupted compressed data")
	ErrBadVersion           = errors.New("lcpcomp: unsupported container version")
	ErrNotCompressed        = errors.New("lcpcomp: data is not an lcpcomp container")
)

// TextIndex errors.
var (
	ErrInvalidIndex  = errors.New("lcpcomp: invalid text index")
	ErrInputTooLarge = errors.New("lcpcomp: input too large to index")
)
