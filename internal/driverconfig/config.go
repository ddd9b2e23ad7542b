// Package driverconfig loads the driver's optional nuua.yaml, the same
// library and discovery pattern the teacher uses for funxy.yaml in
// internal/ext/config.go, scaled down to the three knobs the driver
// actually has.
package driverconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level nuua.yaml shape.
type Config struct {
	// Dump, when true, makes the driver print a disassembly of every
	// compiled program to its diagnostics sink.
	Dump bool `yaml:"dump,omitempty"`

	// CacheDir is where the on-disk compiled-program store keeps its
	// sqlite database. Empty disables the on-disk cache.
	CacheDir string `yaml:"cache_dir,omitempty"`

	// BatchConcurrency bounds how many files CompileBatch compiles at
	// once. Parse replaces zero or negative values with the default
	// of 4.
	BatchConcurrency int `yaml:"batch_concurrency,omitempty"`
}

// DefaultConfig is used when no nuua.yaml is found.
func DefaultConfig() Config {
	return Config{BatchConcurrency: 4}
}

// Load reads and parses a nuua.yaml file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("driverconfig: reading %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses nuua.yaml content already read into memory. path is
// used only to annotate error messages.
func Parse(data []byte, path string) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("driverconfig: parsing %s: %w", path, err)
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 4
	}
	return cfg, nil
}

// Find walks up from dir looking for nuua.yaml or nuua.yml, the same
// upward search funxy.yaml discovery uses. Returns "" with a nil error
// when nothing is found, never an error for "not found".
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("driverconfig: resolving %s: %w", dir, err)
	}
	for {
		for _, name := range []string{"nuua.yaml", "nuua.yml"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
