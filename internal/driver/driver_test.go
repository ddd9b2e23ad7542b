package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uzendayo/Nuua/internal/diagnostics"
	"github.com/Uzendayo/Nuua/internal/driverconfig"
)

func TestDriver_CompileUsesInMemoryCache(t *testing.T) {
	d, err := New(diagnostics.NullSink{}, driverconfig.DefaultConfig(), nil, 16)
	require.NoError(t, err)

	source := "print 1 + 2"
	first, err := d.Compile(source)
	require.NoError(t, err)

	second, err := d.Compile(source)
	require.NoError(t, err)

	// Same *bytecode.Program pointer means the second call was served
	// from the in-memory cache rather than re-emitted.
	assert.Same(t, first, second)
}

func TestDriver_CompileBatchBoundedConcurrency(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	sources := []string{"print 1", "print 2", "x: int = 1", "[1, 2]"}
	for i, src := range sources {
		p := filepath.Join(dir, "file"+string(rune('0'+i))+".nu")
		require.NoError(t, os.WriteFile(p, []byte(src), 0o644))
		paths = append(paths, p)
	}

	cfg := driverconfig.DefaultConfig()
	cfg.BatchConcurrency = 2
	d, err := New(diagnostics.NullSink{}, cfg, nil, 16)
	require.NoError(t, err)

	results := d.CompileBatch(context.Background(), paths)
	require.Len(t, results, len(paths))
	for _, r := range results {
		assert.NoError(t, r.Err)
		assert.NotNil(t, r.Program)
	}
}

func TestDriver_CompileFile_MissingFileErrors(t *testing.T) {
	d, err := New(diagnostics.NullSink{}, driverconfig.DefaultConfig(), nil, 16)
	require.NoError(t, err)

	_, err = d.CompileFile(filepath.Join(t.TempDir(), "does-not-exist.nu"))
	assert.Error(t, err)
}
