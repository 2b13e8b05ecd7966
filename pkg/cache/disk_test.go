package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/renameio/v2"

	"github.com/coastalprograms/notion-cli-go/pkg/cachekey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisk_PromotionAcrossProcesses(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.DiskRoot = root
	cfg.DiskSyncInterval = 0

	// Process P1: write then shut down.
	d1, err := NewDisk(cfg)
	require.NoError(t, err)
	key := cachekey.New(cachekey.NamespaceUser, "42")
	require.NoError(t, d1.Write(key.String(), cachekey.NamespaceUser, map[string]string{"name": "ada"}, 60*time.Second))
	d1.Shutdown()

	// Process P2: fresh memory tier, same disk root.
	d2, err := NewDisk(cfg)
	require.NoError(t, err)
	m2, err := NewMemory(cfg, d2)
	require.NoError(t, err)

	v, ok := m2.Get(key)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"name": "ada"}, v)

	stats := m2.Stats()
	assert.Equal(t, int64(1), stats.Hits)
}

func TestDisk_ExpiredEntryIsAMiss(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.DiskRoot = root

	d, err := NewDisk(cfg)
	require.NoError(t, err)
	require.NoError(t, d.Write("k", cachekey.NamespacePage, "v", -time.Second))

	_, ok := d.Read("k")
	assert.False(t, ok)
}

func TestDisk_CorruptFileIsTreatedAsMiss(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.DiskRoot = root
	d, err := NewDisk(cfg)
	require.NoError(t, err)

	path := d.path("k")
	require.NoError(t, writeRaw(path, []byte("not json")))

	_, ok := d.Read("k")
	assert.False(t, ok)
}

func TestDisk_ClearSkipsTmpFiles(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.DiskRoot = root
	d, err := NewDisk(cfg)
	require.NoError(t, err)

	require.NoError(t, d.Write("k", cachekey.NamespacePage, "v", time.Minute))
	// renameio stages writes under a dot-prefixed name in the destination
	// directory before the atomic rename; mimic that shape directly.
	tmpPath := filepath.Join(root, ".in-flight.json8212133633101708594")
	require.NoError(t, writeRaw(tmpPath, []byte("partial")))

	require.NoError(t, d.Clear())

	assert.FileExists(t, tmpPath)
	_, ok := d.Read("k")
	assert.False(t, ok)
}

// TestDisk_ConcurrentScanDoesNotSeeAnInFlightRenameioWrite exercises a real
// renameio.PendingFile instead of a hand-written stand-in: the temp file it
// stages is still open (not yet renamed into place) when Clear/scanAndEvict
// run, so it must be invisible to every scan path.
func TestDisk_ConcurrentScanDoesNotSeeAnInFlightRenameioWrite(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.DiskRoot = root
	cfg.DiskMaxBytes = 1 // force scanAndEvict to actually walk the directory
	d, err := NewDisk(cfg)
	require.NoError(t, err)

	require.NoError(t, d.Write("k", cachekey.NamespacePage, "v", time.Minute))

	destPath := filepath.Join(root, "pending-record.json")
	pending, err := renameio.TempFile(root, destPath)
	require.NoError(t, err)
	_, err = pending.Write([]byte(`{"key":"in-progress"}`))
	require.NoError(t, err)

	require.NoError(t, d.Clear())
	d.scanAndEvict()
	require.NoError(t, d.InvalidateNamespace(cachekey.NamespacePage))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	foundPending := false
	for _, fi := range entries {
		if fi.Name() != filepath.Base(destPath) {
			foundPending = true
		}
	}
	assert.True(t, foundPending, "the in-flight renameio temp file must survive concurrent scans")

	require.NoError(t, pending.CloseAtomicallyReplace())
	assert.FileExists(t, destPath)
}

func TestDisk_InvalidateNamespaceOnlyAffectsThatNamespace(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.DiskRoot = root
	d, err := NewDisk(cfg)
	require.NoError(t, err)

	require.NoError(t, d.Write("page-key", cachekey.NamespacePage, "p", time.Minute))
	require.NoError(t, d.Write("block-key", cachekey.NamespaceBlock, "b", time.Minute))

	require.NoError(t, d.InvalidateNamespace(cachekey.NamespacePage))

	_, pageOK := d.Read("page-key")
	_, blockOK := d.Read("block-key")
	assert.False(t, pageOK)
	assert.True(t, blockOK)
}

func writeRaw(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
