package driver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"moltree/internal/project"
)

// ListFiles walks dir and returns the sorted paths accepted by match.
// Directories excluded by cfg (dot dirs, [sources].exclude) are skipped.
func ListFiles(ctx context.Context, dir string, cfg project.Config, match func(string) bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && cfg.Excluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if match(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// детерминированный порядок
	sort.Strings(files)
	return files, nil
}

// ListSourceFiles returns the moltree sources below dir.
func ListSourceFiles(ctx context.Context, dir string, cfg project.Config) ([]string, error) {
	return ListFiles(ctx, dir, cfg, cfg.IsSource)
}

// CollectSourceFiles expands paths into a sorted, duplicate-free list of
// source files. Directories are walked; a file named explicitly is taken as
// is, whatever its extension.
func CollectSourceFiles(ctx context.Context, paths []string, cfg project.Config) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			addFile(p)
			continue
		}
		found, err := ListSourceFiles(ctx, p, cfg)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			addFile(f)
		}
	}

	sort.Strings(files)
	return files, nil
}
