package lcpcomp

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sync"
	"sync/atomic"

	"github.com/absfs/absfs"
)

// FileSystem is the subset of an absfs.Filer that FS wraps.
type FileSystem interface {
	OpenFile(name string, flag int, perm fs.FileMode) (absfs.File, error)
	Mkdir(name string, perm fs.FileMode) error
	Remove(name string) error
	Rename(oldpath, newpath string) error
	Stat(name string) (fs.FileInfo, error)
}

// FS stores files LCPComp-compressed on a base filesystem. Files are held
// in memory while open and encoded when closed.
type FS struct {
	base   FileSystem
	config *Config
	skip   *regexp.Regexp // Compiled skip patterns
	stats  Stats
	mu     sync.RWMutex
}

// New creates a new compressed filesystem wrapper
func New(base FileSystem, config *Config) (*FS, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	skip, err := compileSkipPatterns(config.SkipPatterns)
	if err != nil {
		return nil, err
	}

	return &FS{
		base:   base,
		config: config,
		skip:   skip,
	}, nil
}

// shouldSkip returns true if the file should not be compressed
func (cfs *FS) shouldSkip(name string) bool {
	return cfs.skip != nil && cfs.skip.MatchString(name)
}

// snapshot returns a copy of the current configuration with hooks that
// feed the filesystem's stats.
func (cfs *FS) snapshot() *Config {
	cfs.mu.RLock()
	cfg := *cfs.config
	cfs.mu.RUnlock()

	user := cfg.Hooks
	cfg.Hooks = &Hooks{
		OnQueueBuilt: func(entries int) {
			if user != nil && user.OnQueueBuilt != nil {
				user.OnQueueBuilt(entries)
			}
		},
		OnFactorEmitted: func(f Factor) {
			atomic.AddInt64(&cfs.stats.Factors, 1)
			if user != nil && user.OnFactorEmitted != nil {
				user.OnFactorEmitted(f)
			}
		},
	}
	return &cfg
}

// resolve maps a logical name to the name stored on the base filesystem,
// preferring the compressed sibling.
func (cfs *FS) resolve(name string) string {
	cfs.mu.RLock()
	strip := cfs.config.StripExtension
	cfs.mu.RUnlock()

	if !strip || HasCompressionExtension(name) {
		return name
	}
	if _, err := cfs.base.Stat(name + Extension); err == nil {
		return name + Extension
	}
	return name
}

// Open opens a file for reading
func (cfs *FS) Open(name string) (absfs.File, error) {
	return cfs.OpenFile(name, os.O_RDONLY, 0)
}

// Create creates a new file for writing
func (cfs *FS) Create(name string) (absfs.File, error) {
	return cfs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

// OpenFile opens a file with specified flags and permissions. Writable
// files are loaded fully into memory and written back on Close.
func (cfs *FS) OpenFile(name string, flag int, perm fs.FileMode) (absfs.File, error) {
	writable := flag&(os.O_WRONLY|os.O_RDWR) != 0

	found := cfs.resolve(name)
	storedName := found
	compress := false
	if writable {
		storedName = name
		// Names carrying Extension always hold containers, skipped or not.
		if !cfs.shouldSkip(name) || HasCompressionExtension(name) {
			storedName = AddExtension(name)
			compress = true
		}
	}

	var content []byte
	if flag&os.O_TRUNC == 0 {
		data, err := cfs.load(found)
		switch {
		case err == nil:
			content = data
		case errors.Is(err, fs.ErrNotExist) && flag&os.O_CREATE != 0:
		default:
			return nil, err
		}
	}

	var base absfs.File
	if writable {
		// Opened now so permission and existence errors surface here.
		baseFlag := flag &^ os.O_APPEND
		if storedName != found {
			// The file moves between its raw and compressed names.
			if _, err := cfs.base.Stat(found); err == nil {
				baseFlag |= os.O_CREATE
			}
		}
		var err error
		base, err = cfs.base.OpenFile(storedName, baseFlag, perm)
		if err != nil {
			return nil, err
		}
	}

	return newLCPFile(cfs, base, name, storedName, flag, content, compress), nil
}

// load reads a stored file, decoding it if its name carries Extension.
// Files under any other name are returned as stored, even when their
// content looks like a container.
func (cfs *FS) load(storedName string) ([]byte, error) {
	f, err := cfs.base.OpenFile(storedName, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	atomic.AddInt64(&cfs.stats.BytesRead, int64(len(raw)))

	if !HasCompressionExtension(storedName) {
		return raw, nil
	}
	algo, ok := IsCompressed(raw)
	if !ok {
		return raw, nil
	}
	data, err := Decompress(raw)
	if err != nil {
		return nil, &fs.PathError{Op: "decompress", Path: storedName, Err: err}
	}
	atomic.AddInt64(&cfs.stats.FilesDecompressed, 1)
	atomic.AddInt64(&cfs.stats.BytesDecompressed, int64(len(data)))
	cfs.stats.IncrementAlgorithmCount(algo)
	return data, nil
}

// store encodes content and writes it through the open base handle.
//
// Whatever is written under a name carrying Extension is a container. On
// the final store, content below MinSize is written raw instead and renamed
// to its logical name, which closes the base handle. Skipped files are
// written raw under their logical name from the start.
func (cfs *FS) store(f *lcpFile, final bool) error {
	if err := f.base.Truncate(0); err != nil {
		return err
	}
	if _, err := f.base.Seek(0, io.SeekStart); err != nil {
		return err
	}

	cfg := cfs.snapshot()
	raw := !f.compress
	if f.compress && final && f.storedName != f.name && int64(len(f.data)) < cfg.MinSize {
		raw = true
	}
	if raw {
		if _, err := f.base.Write(f.data); err != nil {
			return err
		}
		atomic.AddInt64(&cfs.stats.FilesSkipped, 1)
		atomic.AddInt64(&cfs.stats.BytesWritten, int64(len(f.data)))
		if !f.compress {
			// A stale compressed sibling would shadow the raw file.
			return cfs.removeIfExists(AddExtension(f.name))
		}
		if err := f.base.Close(); err != nil {
			return err
		}
		f.base = nil
		return cfs.base.Rename(f.storedName, f.name)
	}

	var covered int64
	factorHook := cfg.Hooks.OnFactorEmitted
	cfg.Hooks.OnFactorEmitted = func(fc Factor) {
		covered += int64(fc.Len)
		factorHook(fc)
	}

	out, err := Compress(f.data, cfg)
	if err != nil {
		return err
	}
	if _, err := f.base.Write(out); err != nil {
		return err
	}

	if final && f.storedName != f.name {
		if err := cfs.removeIfExists(f.name); err != nil {
			return err
		}
	}

	atomic.AddInt64(&cfs.stats.FilesCompressed, 1)
	atomic.AddInt64(&cfs.stats.BytesWritten, int64(len(f.data)))
	atomic.AddInt64(&cfs.stats.BytesCompressed, int64(len(out)))
	atomic.AddInt64(&cfs.stats.Literals, int64(len(f.data))-covered)
	cfs.stats.IncrementAlgorithmCount(cfg.Algorithm)
	return nil
}

// removeIfExists removes name from the base filesystem if it is there.
func (cfs *FS) removeIfExists(name string) error {
	if err := cfs.base.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Mkdir creates a directory
func (cfs *FS) Mkdir(name string, perm fs.FileMode) error {
	return cfs.base.Mkdir(name, perm)
}

// Remove removes the stored file behind name
func (cfs *FS) Remove(name string) error {
	return cfs.base.Remove(cfs.resolve(name))
}

// Stat returns information about the stored file behind name. The size is
// the stored size.
func (cfs *FS) Stat(name string) (fs.FileInfo, error) {
	return cfs.base.Stat(cfs.resolve(name))
}

// ReadDir reads directory contents, listing compressed files under their
// logical names when StripExtension is set.
func (cfs *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	cfs.mu.RLock()
	strip := cfs.config.StripExtension
	cfs.mu.RUnlock()

	f, err := cfs.base.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}

	entries := make([]fs.DirEntry, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, entryName := range names {
		info, err := cfs.base.Stat(path.Join(name, entryName))
		if err != nil {
			continue // Skip entries we can't stat
		}
		entry := fs.FileInfoToDirEntry(info)
		if strip {
			if stripped, ok := StripExtension(entryName); ok {
				entryName = stripped
				entry = &renamedDirEntry{DirEntry: entry, name: stripped}
			}
		}
		if seen[entryName] {
			continue
		}
		seen[entryName] = true
		entries = append(entries, entry)
	}
	return entries, nil
}

// renamedDirEntry wraps a DirEntry with a different name
type renamedDirEntry struct {
	fs.DirEntry
	name string
}

func (e *renamedDirEntry) Name() string {
	return e.name
}

// GetStats returns a copy of the current statistics
func (cfs *FS) GetStats() *Stats {
	s := &Stats{
		FilesCompressed:   atomic.LoadInt64(&cfs.stats.FilesCompressed),
		FilesDecompressed: atomic.LoadInt64(&cfs.stats.FilesDecompressed),
		FilesSkipped:      atomic.LoadInt64(&cfs.stats.FilesSkipped),
		BytesRead:         atomic.LoadInt64(&cfs.stats.BytesRead),
		BytesWritten:      atomic.LoadInt64(&cfs.stats.BytesWritten),
		BytesCompressed:   atomic.LoadInt64(&cfs.stats.BytesCompressed),
		BytesDecompressed: atomic.LoadInt64(&cfs.stats.BytesDecompressed),
		Factors:           atomic.LoadInt64(&cfs.stats.Factors),
		Literals:          atomic.LoadInt64(&cfs.stats.Literals),
	}
	cfs.stats.AlgorithmCounts.Range(func(k, v any) bool {
		c := new(atomic.Int64)
		c.Store(v.(*atomic.Int64).Load())
		s.AlgorithmCounts.Store(k, c)
		return true
	})
	return s
}

// ResetStats resets statistics to zero
func (cfs *FS) ResetStats() {
	atomic.StoreInt64(&cfs.stats.FilesCompressed, 0)
	atomic.StoreInt64(&cfs.stats.FilesDecompressed, 0)
	atomic.StoreInt64(&cfs.stats.FilesSkipped, 0)
	atomic.StoreInt64(&cfs.stats.BytesRead, 0)
	atomic.StoreInt64(&cfs.stats.BytesWritten, 0)
	atomic.StoreInt64(&cfs.stats.BytesCompressed, 0)
	atomic.StoreInt64(&cfs.stats.BytesDecompressed, 0)
	atomic.StoreInt64(&cfs.stats.Factors, 0)
	atomic.StoreInt64(&cfs.stats.Literals, 0)
	cfs.stats.AlgorithmCounts.Range(func(k, _ any) bool {
		cfs.stats.AlgorithmCounts.Delete(k)
		return true
	})
}

// SetAlgorithm changes the backend used for files closed from now on
func (cfs *FS) SetAlgorithm(algo Algorithm) error {
	return cfs.update(func(c *Config) { c.Algorithm = algo })
}

// SetLevel changes the backend level
func (cfs *FS) SetLevel(level int) error {
	return cfs.update(func(c *Config) { c.Level = level })
}

// SetThreshold changes the minimum factor length
func (cfs *FS) SetThreshold(threshold int) error {
	return cfs.update(func(c *Config) { c.Threshold = threshold })
}

// update applies fn to a copy of the config and installs it if it
// validates.
func (cfs *FS) update(fn func(*Config)) error {
	cfs.mu.Lock()
	defer cfs.mu.Unlock()
	next := *cfs.config
	fn(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	cfs.config = &next
	return nil
}
