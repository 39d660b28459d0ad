package lcpcomp

// Preset configurations for common use cases

// FastestConfig returns a configuration optimized for speed: no header
// pass over the factors and lz4 on top.
func FastestConfig() *Config {
	return &Config{
		Threshold:      4,
		Algorithm:      AlgorithmLZ4,
		Level:          0,
		Header:         false,
		StripExtension: true,
		BufferSize:     64 * 1024,
		MinSize:        0,
	}
}

// RecommendedConfig returns the recommended configuration for general use.
// The factor stream is already free of long repeats; zstd level 3 mops up
// the skewed literal and length distributions.
func RecommendedConfig() *Config {
	return &Config{
		Threshold:      DefaultThreshold,
		Algorithm:      AlgorithmZstd,
		Level:          3,
		Header:         true,
		StripExtension: true,
		BufferSize:     64 * 1024,
		MinSize:        512, // Skip very small files
		SkipPatterns: []string{
			// Already compressed formats
			`\.(jpg|jpeg|png|gif|webp)$`,    // Images
			`\.(mp4|mkv|avi|mov|webm)$`,     // Videos
			`\.(mp3|flac|ogg|m4a|aac)$`,     // Audio
			`\.(zip|gz|bz2|xz|7z|rar|tar)$`, // Archives
			`\.(zst|lz4|br|sz|snappy)$`,     // Compressed
		},
	}
}

// BestCompressionConfig returns a configuration optimized for maximum
// compression. Use for write-once/read-many content.
func BestCompressionConfig() *Config {
	return &Config{
		Threshold:      2,
		Algorithm:      AlgorithmBrotli,
		Level:          11,
		Header:         true,
		StripExtension: true,
		BufferSize:     128 * 1024,
		MinSize:        1024, // Only compress files > 1KB
		SkipPatterns: []string{
			`\.(jpg|jpeg|png|gif|webp|mp4|mkv|avi|mov|mp3|flac|zip|gz|bz2|xz|7z|rar|zst|lz4|br|sz)$`,
		},
	}
}

// CompatibleConfig returns a configuration whose payload any gzip
// implementation can unwrap.
func CompatibleConfig() *Config {
	return &Config{
		Threshold:      DefaultThreshold,
		Algorithm:      AlgorithmGzip,
		Level:          6,
		Header:         true,
		StripExtension: true,
		BufferSize:     64 * 1024,
		MinSize:        512,
	}
}

// LowCPUConfig returns a configuration optimized for low CPU usage
func LowCPUConfig() *Config {
	return &Config{
		Threshold:      8,
		Algorithm:      AlgorithmSnappy,
		Level:          0, // Snappy has no levels
		Header:         true,
		StripExtension: true,
		BufferSize:     32 * 1024,
		MinSize:        1024,
	}
}

// NewWithRecommendedConfig creates a new compressed filesystem with recommended settings
func NewWithRecommendedConfig(base FileSystem) (*FS, error) {
	return New(base, RecommendedConfig())
}

// NewWithFastestConfig creates a new compressed filesystem optimized for speed
func NewWithFastestConfig(base FileSystem) (*FS, error) {
	return New(base, FastestConfig())
}

// NewWithBestCompression creates a new compressed filesystem optimized for compression ratio
func NewWithBestCompression(base FileSystem) (*FS, error) {
	return New(base, BestCompressionConfig())
}

// CompressBytes compresses data with the default threshold and the given
// backend and level.
func CompressBytes(data []byte, algo Algorithm, level int) ([]byte, error) {
	cfg := DefaultConfig()
	cfg.Algorithm = algo
	cfg.Level = level
	return Compress(data, cfg)
}

// DecompressBytes decompresses a container. The backend is read from the
// header.
func DecompressBytes(data []byte) ([]byte, error) {
	return Decompress(data)
}

// GetCompressionRatio calculates the compression ratio for given original and compressed sizes
// Returns a value between 0 and 1, where lower is better
// E.g., 0.5 means the compressed size is 50% of the original
func GetCompressionRatio(originalSize, compressedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return float64(compressedSize) / float64(originalSize)
}

// GetCompressionPercentage calculates the compression percentage
// Returns the percentage of space saved (0-100)
// E.g., 50 means 50% space savings
func GetCompressionPercentage(originalSize, compressedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return (1 - float64(compressedSize)/float64(originalSize)) * 100
}
