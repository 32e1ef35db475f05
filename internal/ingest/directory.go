// Package ingest enumerates input documents on disk.
package ingest

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/scandesk/docproc/constants"
)

// Stats aggregates one directory walk.
type Stats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
}

// ListDocuments walks root, filters by includeExts (or the default allowed
// extensions), skips hidden files and directories when skipHidden is set, and
// returns the matched file paths in walk order.
func ListDocuments(root string, includeExts []string, skipHidden bool) ([]string, Stats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, Stats{}, errors.New("root path is required")
	}

	exts := map[string]struct{}{}
	if len(includeExts) == 0 {
		exts = constants.AllowedExtensions
	} else {
		for _, e := range includeExts {
			e = constants.NormalizeExt(strings.TrimSpace(e))
			if e != "" {
				exts[e] = struct{}{}
			}
		}
	}

	var paths []string
	var stats Stats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		stats.Scanned++
		if skipHidden && isHidden(path) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			stats.Skipped++
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if _, ok := exts[ext]; !ok {
			stats.Skipped++
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return paths, stats, err
	}
	return paths, stats, nil
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}
