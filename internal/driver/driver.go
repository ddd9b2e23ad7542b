// Package driver is the glue spec.md §2 item 6 calls for: orchestrate
// parse → emit → finalize, append program termination (already done
// by compiler.Compile), and expose optional dump hooks. It is also
// where the ambient and domain stacks attach: diagnostics, config,
// run correlation IDs, in-memory and on-disk caching, and bounded
// concurrent batch compilation.
package driver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Uzendayo/Nuua/internal/bytecode"
	"github.com/Uzendayo/Nuua/internal/compiler"
	"github.com/Uzendayo/Nuua/internal/diagnostics"
	"github.com/Uzendayo/Nuua/internal/disasm"
	"github.com/Uzendayo/Nuua/internal/driverconfig"
)

// DiskCache is the subset of internal/diskcache.Store the driver
// depends on, kept as an interface here so the driver package never
// imports modernc.org/sqlite directly and stays cheap to construct in
// tests that don't need persistence.
type DiskCache interface {
	Get(hash string) (*bytecode.Program, bool, error)
	Put(hash, sourcePath string, p *bytecode.Program) error
}

// Driver owns the ambient collaborators one compile session needs: a
// diagnostics sink, a loaded configuration, an in-memory LRU cache
// keyed by source hash, and an optional on-disk cache.
type Driver struct {
	Sink   diagnostics.Sink
	Config driverconfig.Config
	Disk   DiskCache

	memo *lru.Cache
}

// New builds a Driver. memoSize bounds the in-memory program cache;
// pass 0 to disable it (every Compile call then skips straight to the
// on-disk cache, if any, and otherwise re-emits).
func New(sink diagnostics.Sink, cfg driverconfig.Config, disk DiskCache, memoSize int) (*Driver, error) {
	d := &Driver{Sink: sink, Config: cfg, Disk: disk}
	if memoSize > 0 {
		cache, err := lru.New(memoSize)
		if err != nil {
			return nil, fmt.Errorf("driver: building in-memory cache: %w", err)
		}
		d.memo = cache
	}
	return d, nil
}

func sourceHash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Compile runs one source string through parse → emit → finalize. It
// checks the in-memory cache, then the on-disk cache, before falling
// back to compiler.Compile; on a miss it populates both caches it was
// given. Each call gets its own run ID so concurrent CompileBatch
// calls can be distinguished in the diagnostics stream.
func (d *Driver) Compile(source string) (*bytecode.Program, error) {
	runID := uuid.New().String()
	hash := sourceHash(source)

	if d.memo != nil {
		if cached, ok := d.memo.Get(hash); ok {
			d.Sink.Info("run %s: in-memory cache hit for %s", runID, hash[:12])
			return cached.(*bytecode.Program), nil
		}
	}

	if d.Disk != nil {
		if prog, ok, err := d.Disk.Get(hash); err != nil {
			d.Sink.Warn("run %s: disk cache lookup failed: %v", runID, err)
		} else if ok {
			d.Sink.Info("run %s: disk cache hit for %s", runID, hash[:12])
			if d.memo != nil {
				d.memo.Add(hash, prog)
			}
			return prog, nil
		}
	}

	d.Sink.Info("run %s: compiling %s", runID, hash[:12])
	prog, err := compiler.Compile(source)
	if err != nil {
		d.Sink.Error("run %s: compile failed: %v", runID, err)
		return nil, err
	}
	d.Sink.Success("run %s: compiled", runID)

	if d.Config.Dump {
		d.Sink.Info("run %s disassembly:\n%s", runID, disasm.Disassemble(prog, runID))
	}

	if d.memo != nil {
		d.memo.Add(hash, prog)
	}
	if d.Disk != nil {
		if err := d.Disk.Put(hash, "", prog); err != nil {
			d.Sink.Warn("run %s: disk cache write failed: %v", runID, err)
		}
	}

	return prog, nil
}

// CompileFile reads path and compiles its contents, recording the
// real source path in the on-disk cache instead of the synthetic
// empty one Compile uses for anonymous strings.
func (d *Driver) CompileFile(path string) (*bytecode.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("driver: reading %s: %w", path, err)
	}
	hash := sourceHash(string(data))
	prog, err := d.Compile(string(data))
	if err != nil {
		return nil, err
	}
	if d.Disk != nil {
		if err := d.Disk.Put(hash, path, prog); err != nil {
			d.Sink.Warn("recording source path for %s failed: %v", path, err)
		}
	}
	return prog, nil
}

// BatchResult pairs a file's compiled program with its originating
// path, or the error that prevented compilation.
type BatchResult struct {
	Path    string
	Program *bytecode.Program
	Err     error
}

// CompileBatch compiles every path in paths concurrently, bounded by
// d.Config.BatchConcurrency independent compiler.Emitter instances —
// spec.md §5's "one compilation is one linear pass" holds per file;
// concurrency lives only between files, never inside one compile.
func (d *Driver) CompileBatch(ctx context.Context, paths []string) []BatchResult {
	results := make([]BatchResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.Config.BatchConcurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-ctx.Done():
				results[i] = BatchResult{Path: path, Err: ctx.Err()}
				return nil
			default:
			}
			prog, err := d.CompileFile(path)
			results[i] = BatchResult{Path: path, Program: prog, Err: err}
			return nil
		})
	}
	_ = g.Wait() // errors are carried per-result, never aborts the batch

	return results
}
