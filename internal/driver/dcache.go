package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"meel/internal/braces"
)

// bump when DiskPayload or the brace rules change; older entries become misses
const diskCacheSchemaVersion uint16 = 1

// Digest is the SHA-256 of a template's normalized content.
type Digest = [32]byte

// DiskCache stores scan and match results keyed by template content, so
// re-checking an unchanged template skips both passes. Entries are msgpack
// files under <dir>/v<schema>/<xx>/<digest>.mp. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is one cache entry.
type DiskPayload struct {
	Schema  uint16          `msgpack:"schema"`
	Path    string          `msgpack:"path"` // informational; the key is Hash
	Hash    Digest          `msgpack:"hash"`
	Markers []braces.Marker `msgpack:"markers"`
	Result  braces.Result   `msgpack:"result"`
}

// OpenDiskCache opens the cache under the user cache directory
// ($XDG_CACHE_HOME on Linux), in a subdirectory named app.
func OpenDiskCache(app string) (*DiskCache, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("locate user cache dir: %w", err)
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens a cache rooted at dir, creating it if needed.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) entryPath(key Digest) string {
	name := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "v"+strconv.Itoa(int(diskCacheSchemaVersion)), name[:2], name+".mp")
}

// writeAtomic writes through a temp file in the target directory and
// renames it into place, so readers never see a partial entry.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// после rename временного файла уже нет
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = errors.Join(err, rmErr)
		}
	}()
	if err := write(f); err != nil {
		return errors.Join(err, f.Close())
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Put stores payload under key. A nil cache ignores the call.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil || payload == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload.Schema = diskCacheSchemaVersion
	return writeAtomic(c.entryPath(key), func(w io.Writer) error {
		return msgpack.NewEncoder(w).Encode(payload)
	})
}

// Get loads the entry for key into out. Missing entries and entries written
// under another schema or for another digest are misses, not errors.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.entryPath(key))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	var payload DiskPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return false, fmt.Errorf("decode cache entry: %w", err)
	}
	if payload.Schema != diskCacheSchemaVersion || payload.Hash != key {
		return false, nil
	}
	*out = payload
	return true, nil
}

// DropAll removes every entry (`meel check --cache-clear`).
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// rename first so a concurrent meel never reads a half-deleted tree
	old := fmt.Sprintf("%s.old-%d", c.dir, time.Now().UnixNano())
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.MkdirAll(c.dir, 0o755)
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
