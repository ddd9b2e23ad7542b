// Package config holds small constants for the CLI entry point — file
// extension conventions and the current version string, in the same
// style as the teacher's internal/config.
package config

// Version is the current Nuua compiler version.
var Version = "0.1.0"

const SourceFileExt = ".nu"

// SourceFileExtensions lists every recognized source extension.
var SourceFileExtensions = []string{".nu", ".nuua"}

// HasSourceExt returns true if path ends with a recognized source
// extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// TrimSourceExt removes any recognized source extension from name.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}
