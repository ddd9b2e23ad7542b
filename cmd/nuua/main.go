package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Uzendayo/Nuua/internal/config"
	"github.com/Uzendayo/Nuua/internal/diagnostics"
	"github.com/Uzendayo/Nuua/internal/disasm"
	"github.com/Uzendayo/Nuua/internal/diskcache"
	"github.com/Uzendayo/Nuua/internal/driver"
	"github.com/Uzendayo/Nuua/internal/driverconfig"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [args]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  compile <file>          compile a single %s source file\n", config.SourceFileExt)
	fmt.Fprintf(os.Stderr, "  compile-all <file...>   compile multiple source files concurrently\n")
	fmt.Fprintf(os.Stderr, "  disasm <file>           compile and print the resulting bytecode\n")
}

func buildDriver() (*driver.Driver, func(), error) {
	sink := diagnostics.NewStderrSink()

	cfg := driverconfig.DefaultConfig()
	if path, err := driverconfig.Find("."); err == nil && path != "" {
		if loaded, err := driverconfig.Load(path); err != nil {
			sink.Warn("ignoring %s: %v", path, err)
		} else {
			cfg = loaded
			sink.Info("loaded config from %s", path)
		}
	}

	var disk driver.DiskCache
	var closeDisk func()
	if cfg.CacheDir != "" {
		dbPath := filepath.Join(cfg.CacheDir, "nuua-cache.db")
		store, err := diskcache.Open(dbPath)
		if err != nil {
			sink.Warn("disabling on-disk cache: %v", err)
		} else {
			disk = store
			closeDisk = func() { store.Close() }
		}
	}

	d, err := driver.New(sink, cfg, disk, 256)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if closeDisk != nil {
			closeDisk()
		}
	}
	return d, cleanup, nil
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	d, cleanup, err := buildDriver()
	if err != nil {
		fmt.Fprintf(os.Stderr, "nuua: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	switch os.Args[1] {
	case "compile":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Usage: %s compile <file>\n", os.Args[0])
			os.Exit(1)
		}
		if _, err := d.CompileFile(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "nuua: %v\n", err)
			os.Exit(1)
		}

	case "compile-all":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Usage: %s compile-all <file...>\n", os.Args[0])
			os.Exit(1)
		}
		results := d.CompileBatch(context.Background(), os.Args[2:])
		failed := false
		for _, r := range results {
			if r.Err != nil {
				fmt.Fprintf(os.Stderr, "nuua: %s: %v\n", r.Path, r.Err)
				failed = true
			}
		}
		if failed {
			os.Exit(1)
		}

	case "disasm":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Usage: %s disasm <file>\n", os.Args[0])
			os.Exit(1)
		}
		prog, err := d.CompileFile(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "nuua: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(disasm.Disassemble(prog, os.Args[2]))

	case "-help", "--help", "help":
		usage()

	default:
		usage()
		os.Exit(1)
	}
}
