package lcpcomp

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/absfs/absfs"
)

var _ absfs.File = (*lcpFile)(nil)

// lcpFile is an open file of an FS. The whole logical content lives in
// data; writable files keep the base handle open and rewrite it on Close.
type lcpFile struct {
	cfs  *FS
	base absfs.File // nil for read-only handles
	flag int

	name       string // logical name
	storedName string // name on the base filesystem
	compress   bool

	data   []byte
	pos    int64
	dirty  bool
	closed bool
	mu     sync.Mutex
}

func newLCPFile(cfs *FS, base absfs.File, name, storedName string, flag int, content []byte, compress bool) *lcpFile {
	f := &lcpFile{
		cfs:        cfs,
		base:       base,
		flag:       flag,
		name:       name,
		storedName: storedName,
		compress:   compress,
		data:       content,
	}
	if base != nil && f.data == nil {
		cfs.mu.RLock()
		f.data = make([]byte, 0, cfs.config.BufferSize)
		cfs.mu.RUnlock()
	}
	// A file created or truncated must be written even if left empty.
	f.dirty = base != nil && flag&(os.O_CREATE|os.O_TRUNC) != 0
	return f
}

func (f *lcpFile) readable() bool {
	return f.flag&os.O_WRONLY == 0
}

func (f *lcpFile) writable() bool {
	return f.base != nil
}

// Name returns the logical name of the file
func (f *lcpFile) Name() string {
	return f.name
}

// Read reads decompressed content from the current offset
func (f *lcpFile) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, fs.ErrClosed
	}
	if !f.readable() {
		return 0, os.ErrPermission
	}
	if f.pos >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.pos:])
	f.pos += int64(n)
	return n, nil
}

// ReadAt reads len(b) bytes starting at byte offset off
func (f *lcpFile) ReadAt(b []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, fs.ErrClosed
	}
	if off < 0 {
		return 0, os.ErrInvalid
	}
	if off >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(b, f.data[off:])
	if n < len(b) {
		return n, io.EOF
	}
	return n, nil
}

// Write writes at the current offset, or at the end in append mode
func (f *lcpFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, fs.ErrClosed
	}
	if !f.writable() {
		return 0, os.ErrPermission
	}
	if f.flag&os.O_APPEND != 0 {
		f.pos = int64(len(f.data))
	}
	n := f.writeAt(p, f.pos)
	f.pos += int64(n)
	return n, nil
}

// WriteAt writes len(b) bytes starting at byte offset off
func (f *lcpFile) WriteAt(b []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, fs.ErrClosed
	}
	if !f.writable() {
		return 0, os.ErrPermission
	}
	if off < 0 {
		return 0, os.ErrInvalid
	}
	if f.flag&os.O_APPEND != 0 {
		return 0, errors.New("lcpcomp: WriteAt not allowed in append mode")
	}
	return f.writeAt(b, off), nil
}

// writeAt grows data as needed, zero-filling any gap.
func (f *lcpFile) writeAt(p []byte, off int64) int {
	if end := off + int64(len(p)); end > int64(len(f.data)) {
		if end <= int64(cap(f.data)) {
			tail := f.data[len(f.data):end]
			clear(tail)
			f.data = f.data[:end]
		} else {
			grown := make([]byte, end, end+end/4)
			copy(grown, f.data)
			f.data = grown
		}
	}
	f.dirty = true
	return copy(f.data[off:], p)
}

// WriteString writes a string to the file
func (f *lcpFile) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

// Seek sets the offset for the next Read or Write
func (f *lcpFile) Seek(offset int64, whence int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, fs.ErrClosed
	}

	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = f.pos + offset
	case io.SeekEnd:
		next = int64(len(f.data)) + offset
	default:
		return 0, os.ErrInvalid
	}
	if next < 0 {
		return 0, os.ErrInvalid
	}
	f.pos = next
	return next, nil
}

// Truncate changes the logical size of the file
func (f *lcpFile) Truncate(size int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return fs.ErrClosed
	}
	if !f.writable() {
		return os.ErrPermission
	}
	if size < 0 {
		return os.ErrInvalid
	}
	if size <= int64(len(f.data)) {
		f.data = f.data[:size]
		f.dirty = true
		return nil
	}
	f.writeAt(make([]byte, size-int64(len(f.data))), int64(len(f.data)))
	return nil
}

// Stat returns information about the logical file: its uncompressed size
// under its logical name.
func (f *lcpFile) Stat() (fs.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	info, err := f.cfs.base.Stat(f.storedName)
	if err != nil {
		return nil, err
	}
	return &logicalFileInfo{FileInfo: info, name: f.name, size: int64(len(f.data))}, nil
}

// Sync writes pending content through to the base file
func (f *lcpFile) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return fs.ErrClosed
	}
	if !f.dirty || f.base == nil {
		return nil
	}
	return f.flush()
}

// flush stores data and syncs the base handle.
func (f *lcpFile) flush() error {
	if err := f.cfs.store(f, false); err != nil {
		return err
	}
	f.dirty = false
	return f.base.Sync()
}

// Close writes pending content and releases the base file
func (f *lcpFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true

	if f.base == nil {
		return nil
	}

	var err error
	if f.dirty {
		err = f.cfs.store(f, true)
	}
	if f.base != nil {
		if cerr := f.base.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Readdir is not supported on files
func (f *lcpFile) Readdir(int) ([]os.FileInfo, error) {
	return nil, os.ErrInvalid
}

// Readdirnames is not supported on files
func (f *lcpFile) Readdirnames(int) ([]string, error) {
	return nil, os.ErrInvalid
}

// ReadDir is not supported on files
func (f *lcpFile) ReadDir(int) ([]fs.DirEntry, error) {
	return nil, os.ErrInvalid
}

// logicalFileInfo reports the logical name and size of a stored file.
type logicalFileInfo struct {
	fs.FileInfo
	name string
	size int64
}

func (fi *logicalFileInfo) Name() string { return fi.name }
func (fi *logicalFileInfo) Size() int64  { return fi.size }
