// Package scanner enumerates candidate files for a corpus analysis run.
//
// The scanner applies include/exclude filters exactly once per path while
// walking: extension allow-list, path-substring deny-list, and hidden-entry
// skipping. Unreadable entries and symlinks are recorded as warnings and
// never fail the walk. Output order is whatever the filesystem yields;
// consumers must not depend on it.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Warning records a path that was skipped during scanning and why.
// Every skipped file is accounted for either here or in the result set.
type Warning struct {
	Path   string
	Reason string
}

// Result holds the outcome of a corpus scan.
type Result struct {
	// Paths are the files selected for analysis.
	Paths []string
	// Warnings lists entries skipped for non-filter reasons
	// (permission denied, symlinks, unreadable directories).
	Warnings []Warning
}

// Scan walks the given roots and returns all files matching the include
// extensions and not matching any exclude substring. Re-invoking with
// identical arguments yields identical results modulo filesystem changes.
//
// Roots that do not exist produce a warning, not an error; a run over
// several roots should not fail because one was removed.
func Scan(roots []string, includeExts []string, excludeSubstrings []string) Result {
	var res Result

	extSet := make(map[string]bool, len(includeExts))
	for _, ext := range includeExts {
		extSet[strings.ToLower(ext)] = true
	}

	for _, root := range roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			res.Warnings = append(res.Warnings, Warning{Path: root, Reason: "unresolvable root: " + err.Error()})
			continue
		}

		if _, err := os.Stat(absRoot); err != nil {
			res.Warnings = append(res.Warnings, Warning{Path: root, Reason: "root not accessible: " + err.Error()})
			continue
		}

		filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				// Permission denied and races are warnings, never fatal.
				res.Warnings = append(res.Warnings, Warning{Path: path, Reason: "walk: " + walkErr.Error()})
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			base := filepath.Base(path)

			if d.IsDir() {
				if path != absRoot && strings.HasPrefix(base, ".") {
					return filepath.SkipDir
				}
				if excludedBySubstring(path, excludeSubstrings) {
					return filepath.SkipDir
				}
				return nil
			}

			// Symlinks are skipped outright: following them risks loops
			// and double-counting content reachable by its real path.
			if d.Type()&fs.ModeSymlink != 0 {
				res.Warnings = append(res.Warnings, Warning{Path: path, Reason: "symlink skipped"})
				return nil
			}

			if strings.HasPrefix(base, ".") {
				return nil
			}

			if !extSet[strings.ToLower(filepath.Ext(path))] {
				return nil
			}

			if excludedBySubstring(path, excludeSubstrings) {
				return nil
			}

			res.Paths = append(res.Paths, path)
			return nil
		})
	}

	return res
}

// excludedBySubstring checks a path against the deny-list.
func excludedBySubstring(path string, excludeSubstrings []string) bool {
	for _, sub := range excludeSubstrings {
		if sub != "" && strings.Contains(path, sub) {
			return true
		}
	}
	return false
}
