package scanner

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Directories that never hold contract sources worth scanning
var skippedDirs = map[string]bool{
	"target":       true,
	"node_modules": true,
}

// Walk lists the scannable files under root in lexical order. Hidden
// directories, build output and paths matching an exclude glob are skipped.
// Globs match either the path relative to root or the entry's base name.
// Unreadable entries below root are logged and skipped.
func Walk(root string, exclude []string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Warningf("skipping unreadable %s: %s", path, err.Error())
			return nil
		}

		if path != root && excluded(root, path, d.Name(), exclude) {
			log.Debugf("excluded %s", path)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || skippedDirs[d.Name()]) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() && Supported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func excluded(root, path, name string, patterns []string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
