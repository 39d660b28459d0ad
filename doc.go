// Package lcpcomp implements LCPComp, a dictionary compressor driven by
// the suffix array of its input, together with a transparent compressed
// wrapper for absfs filesystems.
//
// # How it works
//
// The input is indexed once: suffix array (SA), inverse suffix array (ISA)
// and longest-common-prefix array (LCP). Every suffix whose LCP with its
// lexicographic predecessor reaches the threshold is a candidate copy. The
// Factorizer repeatedly takes the candidate with the longest LCP, emits a
// factor copying it from its predecessor, removes every candidate starting
// inside the copied span and shortens candidates that would run into it.
// Candidates are kept in an LCPQueue, a bucket queue keyed by LCP that
// supports max, remove and decrease-key in amortized constant time.
//
// Positions not covered by any factor are literals. The factors and
// literals are written in text order as a bit stream, optionally wrapped by
// a general-purpose backend (gzip, zstd, lz4, brotli, snappy or xz).
//
// Factors may copy from later positions; the decoder resolves copies by
// following references rather than in a single left-to-right pass.
//
// # Quick Start
//
//	out, err := lcpcomp.Compress(data, lcpcomp.RecommendedConfig())
//	...
//	data, err = lcpcomp.Decompress(out)
//
// Working with the factorization directly:
//
//	idx, _ := lcpcomp.NewTextIndex(text)
//	fz, _ := lcpcomp.NewFactorizer(3, nil)
//	factors := lcpcomp.NewFactorBuffer(0)
//	fz.Factorize(idx, factors)
//	for lit := range lcpcomp.NewLiteralView(text, factors).All() {
//	    ...
//	}
//
// # Filesystem
//
//	cfs, _ := lcpcomp.New(base, lcpcomp.RecommendedConfig())
//	f, _ := cfs.Create("data.txt") // stored as data.txt.lcp
//	f.Write(payload)
//	f.Close()
//
// Files are buffered in memory while open and encoded on Close. Files
// smaller than MinSize or matching SkipPatterns are stored as is.
//
// # Configuration Options
//
//   - Threshold: minimum factor length (default 3)
//   - Algorithm, Level: backend wrapping the factor stream
//   - Header: store threshold and field widths for compact lengths
//   - SkipPatterns, MinSize: selective compression in the filesystem
//   - Hooks: observe queue construction and emitted factors
package lcpcomp
