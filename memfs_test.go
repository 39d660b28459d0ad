package lcpcomp

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/absfs/absfs"
)

// memFS is a flat in-memory FileSystem for tests. A directory exists once
// it has been created with Mkdir or holds a file.
type memFS struct {
	mu    sync.RWMutex
	files map[string]*memNode
	dirs  map[string]bool
}

type memNode struct {
	data    []byte
	mode    fs.FileMode
	modTime time.Time
}

func newMemFS() *memFS {
	return &memFS{files: make(map[string]*memNode), dirs: make(map[string]bool)}
}

func cleanPath(name string) string {
	name = strings.TrimPrefix(filepath.Clean(name), string(filepath.Separator))
	if name == "" {
		return "."
	}
	return name
}

func (m *memFS) OpenFile(name string, flag int, perm fs.FileMode) (absfs.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = cleanPath(name)
	if m.isDir(name) {
		return &memHandle{fs: m, name: name, dir: true}, nil
	}
	node, ok := m.files[name]
	if !ok {
		if flag&os.O_CREATE == 0 {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		}
		node = &memNode{mode: perm, modTime: time.Now()}
		m.files[name] = node
	}
	if flag&os.O_TRUNC != 0 {
		node.data = nil
	}
	return &memHandle{fs: m, name: name, node: node, flag: flag}, nil
}

// isDir reports whether name is a directory. Callers hold m.mu.
func (m *memFS) isDir(name string) bool {
	if name == "." || m.dirs[name] {
		return true
	}
	for file := range m.files {
		if strings.HasPrefix(file, name+"/") {
			return true
		}
	}
	return false
}

func (m *memFS) Mkdir(name string, _ fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[cleanPath(name)] = true
	return nil
}

func (m *memFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = cleanPath(name)
	if _, ok := m.files[name]; !ok {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	delete(m.files, name)
	return nil
}

func (m *memFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldpath, newpath = cleanPath(oldpath), cleanPath(newpath)
	node, ok := m.files[oldpath]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}
	m.files[newpath] = node
	delete(m.files, oldpath)
	return nil
}

func (m *memFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name = cleanPath(name)
	node, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return &memInfo{name: filepath.Base(name), size: int64(len(node.data)), mode: node.mode, modTime: node.modTime}, nil
}

// raw returns the stored bytes of name.
func (m *memFS) raw(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	node, ok := m.files[cleanPath(name)]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), node.data...), true
}

type memHandle struct {
	fs     *memFS
	name   string
	node   *memNode
	flag   int
	pos    int64
	dir    bool
	closed bool
}

func (h *memHandle) Name() string { return h.name }

func (h *memHandle) Read(p []byte) (int, error) {
	n, err := h.ReadAt(p, h.pos)
	h.pos += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

func (h *memHandle) ReadAt(p []byte, off int64) (int, error) {
	if h.closed {
		return 0, fs.ErrClosed
	}
	if h.dir {
		return 0, os.ErrInvalid
	}
	h.fs.mu.RLock()
	defer h.fs.mu.RUnlock()
	if off >= int64(len(h.node.data)) {
		return 0, io.EOF
	}
	n := copy(p, h.node.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (h *memHandle) Write(p []byte) (int, error) {
	n, err := h.WriteAt(p, h.pos)
	h.pos += int64(n)
	return n, err
}

func (h *memHandle) WriteAt(p []byte, off int64) (int, error) {
	if h.closed {
		return 0, fs.ErrClosed
	}
	if h.dir || h.flag&(os.O_WRONLY|os.O_RDWR) == 0 {
		return 0, os.ErrPermission
	}
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()
	if end := int(off) + len(p); end > len(h.node.data) {
		grown := make([]byte, end)
		copy(grown, h.node.data)
		h.node.data = grown
	}
	h.node.modTime = time.Now()
	return copy(h.node.data[off:], p), nil
}

func (h *memHandle) WriteString(s string) (int, error) { return h.Write([]byte(s)) }

func (h *memHandle) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += h.pos
	case io.SeekEnd:
		h.fs.mu.RLock()
		offset += int64(len(h.node.data))
		h.fs.mu.RUnlock()
	default:
		return 0, os.ErrInvalid
	}
	if offset < 0 {
		return 0, os.ErrInvalid
	}
	h.pos = offset
	return offset, nil
}

func (h *memHandle) Truncate(size int64) error {
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()
	if size <= int64(len(h.node.data)) {
		h.node.data = h.node.data[:size]
	} else {
		h.node.data = append(h.node.data, make([]byte, size-int64(len(h.node.data)))...)
	}
	return nil
}

func (h *memHandle) Stat() (fs.FileInfo, error) {
	if h.dir {
		return &memInfo{name: h.name, mode: fs.ModeDir | 0755}, nil
	}
	return h.fs.Stat(h.name)
}

func (h *memHandle) Sync() error { return nil }

func (h *memHandle) Close() error {
	h.closed = true
	return nil
}

func (h *memHandle) Readdirnames(n int) ([]string, error) {
	if !h.dir {
		return nil, os.ErrInvalid
	}
	h.fs.mu.RLock()
	names := make([]string, 0, len(h.fs.files))
	for name := range h.fs.files {
		if filepath.Dir(name) == h.name {
			names = append(names, filepath.Base(name))
		}
	}
	h.fs.mu.RUnlock()
	sort.Strings(names)
	if n > 0 && len(names) > n {
		names = names[:n]
	}
	return names, nil
}

func (h *memHandle) Readdir(n int) ([]os.FileInfo, error) {
	names, err := h.Readdirnames(n)
	if err != nil {
		return nil, err
	}
	infos := make([]os.FileInfo, 0, len(names))
	for _, name := range names {
		if info, err := h.fs.Stat(filepath.Join(h.name, name)); err == nil {
			infos = append(infos, info)
		}
	}
	return infos, nil
}

func (h *memHandle) ReadDir(n int) ([]fs.DirEntry, error) {
	infos, err := h.Readdir(n)
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = fs.FileInfoToDirEntry(info)
	}
	return entries, nil
}

type memInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (fi *memInfo) Name() string       { return fi.name }
func (fi *memInfo) Size() int64        { return fi.size }
func (fi *memInfo) Mode() fs.FileMode  { return fi.mode }
func (fi *memInfo) ModTime() time.Time { return fi.modTime }
func (fi *memInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi *memInfo) Sys() any           { return nil }
