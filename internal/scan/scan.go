// Package scan walks project trees looking for known build-output
// directories. The walk is depth-bounded and error-tolerant: unreadable
// entries are skipped, never fatal.
package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxDepth bounds how deep the walk descends below a scan root.
const DefaultMaxDepth = 3

// buildDirNames is the catalog of directory names produced by common
// toolchains as disposable build output.
var buildDirNames = map[string]struct{}{
	// Rust
	"target": {},
	// C/C++
	"build":               {},
	".build":              {},
	"cmake-build-debug":   {},
	"cmake-build-release": {},
	"Debug":               {},
	"Release":             {},
	// JavaScript/TypeScript
	"node_modules":  {},
	"dist":          {},
	".next":         {},
	".parcel-cache": {},
	".cache":        {},
	// Python
	"__pycache__": {},
	".eggs":       {},
	"eggs":        {},
	// Java/Gradle
	".gradle": {},
	// PHP/Composer
	"vendor": {},
	// Ruby
	".bundle": {},
	// General build outputs
	"out":         {},
	".output":     {},
	".nyc_output": {},
}

// IsBuildDir reports whether name is in the build-output catalog.
func IsBuildDir(name string) bool {
	_, ok := buildDirNames[name]
	return ok
}

// Excluded reports whether path contains any of the configured exclusion
// substrings.
func Excluded(path string, excluded []string) bool {
	for _, ex := range excluded {
		if ex != "" && strings.Contains(path, ex) {
			return true
		}
	}
	return false
}

// Walk visits every directory under root up to maxDepth levels deep, calling
// visit with the full path and entry. Errors on individual entries are
// skipped. The root itself is not visited.
func Walk(root string, maxDepth int, visit func(path string, entry fs.DirEntry)) {
	_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root || !entry.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return filepath.SkipDir
		}
		if maxDepth > 0 && strings.Count(rel, string(filepath.Separator))+1 > maxDepth {
			return filepath.SkipDir
		}
		visit(path, entry)
		// A matched build directory is a leaf; never descend into it.
		if IsBuildDir(entry.Name()) {
			return filepath.SkipDir
		}
		return nil
	})
}

// languageMarkers maps project marker files to a detected language, checked
// in order.
var languageMarkers = []struct {
	file string
	lang string
}{
	{"Cargo.toml", "Rust"},
	{"go.mod", "Go"},
	{"package.json", "JavaScript"},
	{"pyproject.toml", "Python"},
	{"requirements.txt", "Python"},
	{"setup.py", "Python"},
	{"pom.xml", "Java"},
	{"build.gradle", "Java"},
	{"composer.json", "PHP"},
	{"Gemfile", "Ruby"},
	{"CMakeLists.txt", "C/C++"},
	{"Makefile", "C/C++"},
}

// DetectLanguage guesses the project language from marker files in the
// project root.
func DetectLanguage(projectPath string) string {
	for _, m := range languageMarkers {
		if _, err := os.Stat(filepath.Join(projectPath, m.file)); err == nil {
			return m.lang
		}
	}
	return "Unknown"
}

// DirSize returns the total size in bytes of all regular files under path.
// Unreadable entries contribute nothing.
func DirSize(path string) int64 {
	var size int64
	_ = filepath.WalkDir(path, func(_ string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.Type().IsRegular() {
			if info, infoErr := entry.Info(); infoErr == nil {
				size += info.Size()
			}
		}
		return nil
	})
	return size
}
