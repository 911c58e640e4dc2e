package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"wirecheck/internal/ast"
	"wirecheck/internal/diag"
)

// Current schema version - increment when CachedUnit changes.
const diskCacheSchemaVersion uint16 = 1

// Digest addresses one cached definition.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// DiskCache stores per-definition diagnostics on disk, keyed by the
// definition's encoded AST and every option that changes the result.
// Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedUnit is the on-disk form of one analyzed definition. Diagnostics
// are stored before severity and rule filtering.
type CachedUnit struct {
	Schema      uint16            `msgpack:"schema"`
	Name        string            `msgpack:"name"`
	Blocks      int               `msgpack:"blocks"`
	Diagnostics []diag.Diagnostic `msgpack:"diagnostics"`
}

func newCachedUnit(def *ast.Definition, res UnitResult) *CachedUnit {
	return &CachedUnit{
		Schema:      diskCacheSchemaVersion,
		Name:        def.Name,
		Blocks:      res.Blocks,
		Diagnostics: res.Bag.Items(),
	}
}

func (u *CachedUnit) valid(def *ast.Definition) bool {
	return u.Schema == diskCacheSchemaVersion && u.Name == def.Name
}

// OpenDiskCache opens $XDG_CACHE_HOME/<app> (or ~/.cache/<app>).
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app))
}

func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir is the cache root.
func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(key Digest) string {
	// подкаталог "units" для удобства очистки
	return filepath.Join(c.dir, "units", key.String()+".mp")
}

// Put writes payload atomically.
func (c *DiskCache) Put(key Digest, payload *CachedUnit) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, os.Remove(f.Name()))
		}
	}()
	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get decodes the entry for key into out. A missing entry is not an error.
func (c *DiskCache) Get(key Digest, out *CachedUnit) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll removes every cached entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог, потом удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// cacheKey hashes the definition together with the options that change
// its unfiltered diagnostics. It reports false when caching is off.
func (o *Options) cacheKey(def *ast.Definition) (Digest, bool) {
	if o.Cache == nil {
		return Digest{}, false
	}
	encoded, err := msgpack.Marshal(def)
	if err != nil {
		return Digest{}, false
	}
	h := sha256.New()
	var hdr [2 + 1 + 1 + 8 + 8]byte
	binary.LittleEndian.PutUint16(hdr[0:], diskCacheSchemaVersion)
	hdr[2] = byte(o.Curve)
	hdr[3] = byte(o.Lookahead)
	binary.LittleEndian.PutUint64(hdr[4:], uint64(o.MaxVisits))
	binary.LittleEndian.PutUint64(hdr[12:], uint64(o.MaxDiagnostics))
	_, _ = h.Write(hdr[:])

	names := make([]string, 0, len(o.Analyzers))
	for _, a := range o.Analyzers {
		if !o.Disabled[a.Code] {
			names = append(names, a.Name())
		}
	}
	slices.Sort(names)
	for _, n := range names {
		_, _ = h.Write([]byte(n))
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write(encoded)

	var out Digest
	copy(out[:], h.Sum(nil))
	return out, true
}
