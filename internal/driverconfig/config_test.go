package driverconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(""), "nuua.yaml")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.BatchConcurrency)
	assert.False(t, cfg.Dump)
}

func TestParse_OverridesAndNormalizesConcurrency(t *testing.T) {
	cfg, err := Parse([]byte("dump: true\ncache_dir: /tmp/nuua\nbatch_concurrency: -1\n"), "nuua.yaml")
	require.NoError(t, err)
	assert.True(t, cfg.Dump)
	assert.Equal(t, "/tmp/nuua", cfg.CacheDir)
	assert.Equal(t, 4, cfg.BatchConcurrency) // non-positive values fall back to the default
}

func TestFind_WalksUpToParent(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "nuua.yaml"), []byte("dump: true\n"), 0o644))

	found, err := Find(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "nuua.yaml"), found)
}

func TestFind_NoConfigReturnsEmptyNoError(t *testing.T) {
	found, err := Find(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, found)
}
