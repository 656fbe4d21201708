// Package modfinder locates the guest module to run.
package modfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// EnvModule is the environment variable naming the module path.
const EnvModule = "WASMDOM_MODULE"

// Sentinel errors.
var (
	ErrModuleNotFound = errors.New("wasm module not found")
	ErrNoModules      = errors.New("no wasm modules found")
)

// DefaultCandidates returns the module paths tried in dir, in priority
// order.
func DefaultCandidates(dir string) []string {
	return []string{
		filepath.Join(dir, "main.wasm"),
		filepath.Join(dir, "index.wasm"),
		filepath.Join(dir, "web", "main.wasm"),
		filepath.Join(dir, "web", "index.wasm"),
		filepath.Join(dir, "build", "main.wasm"),
	}
}

// FindModule returns the guest module path.
//
// Priority:
//  1. explicit (if non-empty)
//  2. WASMDOM_MODULE environment variable
//  3. DefaultCandidates(dir)
//  4. the most recently modified *.wasm file in dir
//
// Returns ErrModuleNotFound if no valid file is found. The returned path
// has symlinks resolved.
func FindModule(explicit, dir string) (string, error) {
	if explicit != "" {
		if resolved := resolveModule(explicit); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: specified path is not a regular file", ErrModuleNotFound)
	}

	if env := os.Getenv(EnvModule); env != "" {
		if resolved := resolveModule(env); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s environment variable points to an invalid file", ErrModuleNotFound, EnvModule)
	}

	for _, p := range DefaultCandidates(dir) {
		if resolved := resolveModule(p); resolved != "" {
			return resolved, nil
		}
	}

	latest, err := FindLatestModule(dir)
	if err == nil {
		if resolved := resolveModule(latest); resolved != "" {
			return resolved, nil
		}
	}
	return "", ErrModuleNotFound
}

// moduleCandidate caches a stat result so files removed between stat and
// sort do not matter.
type moduleCandidate struct {
	path    string
	modTime int64
}

// FindLatestModule returns the most recently modified *.wasm regular file
// in dir. Returns ErrNoModules if there is none.
func FindLatestModule(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.wasm"))
	if err != nil {
		return "", fmt.Errorf("globbing modules: %w", err)
	}

	candidates := make([]moduleCandidate, 0, len(matches))
	for _, m := range matches {
		info, err := os.Lstat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		candidates = append(candidates, moduleCandidate{path: m, modTime: info.ModTime().UnixNano()})
	}
	if len(candidates) == 0 {
		return "", ErrNoModules
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].modTime > candidates[j].modTime
	})
	return candidates[0].path, nil
}

// resolveModule resolves symlinks and returns the path if it names a
// regular file, or "" otherwise.
func resolveModule(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return ""
	}
	info, err := os.Stat(resolved)
	if err != nil || !info.Mode().IsRegular() {
		return ""
	}
	return resolved
}
