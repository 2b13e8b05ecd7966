package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/renameio/v2"

	"github.com/coastalprograms/notion-cli-go/pkg/cachekey"
	coreerrors "github.com/coastalprograms/notion-cli-go/pkg/errors"
)

// record is a single on-disk cache entry, persisted one per file.
type record struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	Namespace string          `json:"namespace"`
	CreatedAt int64           `json:"createdAt"` // unix millis
	ExpiresAt int64           `json:"expiresAt"` // unix millis
	Size      int64           `json:"size"`
}

// DiskCache is the on-disk tier: content-addressed files under Config.DiskRoot,
// atomic rename writes, size-bounded LRU eviction, and a background flush
// ticker.
type DiskCache struct {
	root string
	cfg  Config

	mu       sync.Mutex
	ticker   *time.Ticker
	stopFlsh chan struct{}
	stopOnce sync.Once
}

// NewDisk constructs the disk tier, creating root on first use (a missing
// directory is not an error, it just reads back as an empty cache).
func NewDisk(cfg Config) (*DiskCache, error) {
	root := cfg.DiskRoot
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.TempDir()
		}
		root = filepath.Join(home, ".notion-cli", "cache")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, coreerrors.New(coreerrors.KindCacheCorruption, "disk.mkdir", err)
	}

	d := &DiskCache{root: root, cfg: cfg, stopFlsh: make(chan struct{})}
	if cfg.DiskSyncInterval > 0 {
		d.ticker = time.NewTicker(cfg.DiskSyncInterval)
		go d.flushLoop()
	}
	return d, nil
}

func (d *DiskCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(d.root, hex.EncodeToString(sum[:])+".json")
}

// isTempFile reports whether name belongs to a renameio write still in
// flight rather than a committed entry. renameio.WriteFile stages its
// content under "."+filepath.Base(path)+<random digits> in the same
// directory before the atomic rename into place, so any dot-prefixed
// name is a pending write, never a finished record.
func isTempFile(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Write atomically persists value under key with ttl via a write-to-temp-
// then-rename idiom (handled by renameio, which owns the temp-file naming
// and rename/cleanup itself).
func (d *DiskCache) Write(key string, namespace cachekey.Namespace, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	now := time.Now()
	rec := record{
		Key:       key,
		Data:      payload,
		Namespace: string(namespace),
		CreatedAt: now.UnixMilli(),
		ExpiresAt: now.Add(ttl).UnixMilli(),
		Size:      int64(len(payload)),
	}
	out, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	if err := renameio.WriteFile(d.path(key), out, 0o644); err != nil {
		return coreerrors.New(coreerrors.KindCacheCorruption, "disk.write", err)
	}

	d.enforceSize()
	return nil
}

// Read returns the cached value for key, or (nil, false) on miss,
// expiry, or corruption (corrupted files are best-effort deleted).
func (d *DiskCache) Read(key string) (any, bool) {
	path := d.path(key)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		os.Remove(path)
		return nil, false
	}

	if time.Now().UnixMilli() >= rec.ExpiresAt {
		go os.Remove(path)
		return nil, false
	}

	var value any
	if err := json.Unmarshal(rec.Data, &value); err != nil {
		os.Remove(path)
		return nil, false
	}
	return value, true
}

// Invalidate deletes key's file, ignoring "not found".
func (d *DiskCache) Invalidate(key string) error {
	err := os.Remove(d.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// InvalidateNamespace removes every on-disk record tagged with ns. This
// requires a directory scan since disk filenames are content hashes, not
// namespace-prefixed.
func (d *DiskCache) InvalidateNamespace(ns cachekey.Namespace) error {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil
	}
	for _, fi := range entries {
		if fi.IsDir() || isTempFile(fi.Name()) {
			continue
		}
		path := filepath.Join(d.root, fi.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		if cachekey.Namespace(rec.Namespace) == ns {
			os.Remove(path)
		}
	}
	return nil
}

// Clear removes every regular entry. Dot-prefixed renameio temp files are
// skipped — they belong to a concurrent write still in flight.
func (d *DiskCache) Clear() error {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil
	}
	for _, fi := range entries {
		if fi.IsDir() || isTempFile(fi.Name()) {
			continue
		}
		os.Remove(filepath.Join(d.root, fi.Name()))
	}
	return nil
}

// enforceSize evicts oldest-by-createdAt entries until total size is under
// DiskMaxBytes. Best-effort and asynchronous relative to the write that
// triggered it — it may run after the write returns.
func (d *DiskCache) enforceSize() {
	if d.cfg.DiskMaxBytes <= 0 {
		return
	}
	go d.scanAndEvict()
}

func (d *DiskCache) scanAndEvict() {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries, err := os.ReadDir(d.root)
	if err != nil {
		return
	}

	type fileRec struct {
		path      string
		createdAt int64
		size      int64
	}
	var files []fileRec
	var total int64

	for _, fi := range entries {
		if fi.IsDir() || isTempFile(fi.Name()) {
			continue
		}
		path := filepath.Join(d.root, fi.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue // corrupted files are ignored during the size scan
		}
		files = append(files, fileRec{path: path, createdAt: rec.CreatedAt, size: rec.Size})
		total += rec.Size
	}

	if total <= d.cfg.DiskMaxBytes {
		return
	}

	sort.Slice(files, func(i, j int) bool { return files[i].createdAt < files[j].createdAt })
	for _, f := range files {
		if total <= d.cfg.DiskMaxBytes {
			break
		}
		if err := os.Remove(f.path); err == nil {
			total -= f.size
		}
	}
}

// flushLoop periodically prunes expired entries. Persisting dirty
// in-memory records is a no-op here since Memory.Set already starts a
// fire-and-forget disk write on every set; the ticker's job is the
// expiry sweep.
func (d *DiskCache) flushLoop() {
	for {
		select {
		case <-d.ticker.C:
			d.pruneExpired()
		case <-d.stopFlsh:
			return
		}
	}
}

func (d *DiskCache) pruneExpired() {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return
	}
	now := time.Now().UnixMilli()
	for _, fi := range entries {
		if fi.IsDir() || isTempFile(fi.Name()) {
			continue
		}
		path := filepath.Join(d.root, fi.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		if now >= rec.ExpiresAt {
			os.Remove(path)
		}
	}
}

// Shutdown cancels the flush timer. Idempotent.
func (d *DiskCache) Shutdown() {
	d.stopOnce.Do(func() {
		if d.ticker != nil {
			d.ticker.Stop()
		}
		close(d.stopFlsh)
	})
}
