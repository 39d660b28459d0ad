package lcpcomp

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Extension is appended to the names of files stored compressed.
const Extension = ".lcp"

// DetectAlgorithm reads the container header from r and reports the
// backend. It returns ErrNotCompressed if r does not start with a
// container.
func DetectAlgorithm(r io.Reader) (Algorithm, error) {
	buf := make([]byte, len(containerMagic)+3)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	algo, ok := IsCompressed(buf[:n])
	if !ok {
		return "", ErrNotCompressed
	}
	return algo, nil
}

// IsCompressed checks whether data starts with a container header and
// returns its backend.
func IsCompressed(data []byte) (Algorithm, bool) {
	if len(data) < len(containerMagic)+2 || !bytes.Equal(data[:len(containerMagic)], containerMagic) {
		return "", false
	}
	if data[len(containerMagic)] != containerVersion {
		return "", false
	}
	return algorithmByID(data[len(containerMagic)+1])
}

// AddExtension adds the compression extension to a filename
func AddExtension(name string) string {
	if HasCompressionExtension(name) {
		return name
	}
	return name + Extension
}

// StripExtension removes the compression extension from filename
func StripExtension(name string) (string, bool) {
	if !HasCompressionExtension(name) {
		return name, false
	}
	return name[:len(name)-len(Extension)], true
}

// HasCompressionExtension checks if filename has the compression extension
func HasCompressionExtension(name string) bool {
	return strings.EqualFold(filepath.Ext(name), Extension)
}
