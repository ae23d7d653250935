package service

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"paperlens/internal/domain"
)

// scanDir lists regular files under dir whose extension is in exts
// (compared case-insensitively). Results are absolute and sorted.
func scanDir(dir string, recursive bool, exts []string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: directory %s", domain.ErrNotFound, dir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	pattern := "*"
	if recursive {
		pattern = "**/*"
	}
	matches, err := doublestar.Glob(os.DirFS(abs), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	allowed := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		allowed[strings.ToLower(e)] = struct{}{}
	}
	var out []string
	for _, m := range matches {
		if _, ok := allowed[strings.ToLower(filepath.Ext(m))]; !ok {
			continue
		}
		out = append(out, filepath.Join(abs, filepath.FromSlash(m)))
	}
	sort.Strings(out)
	return out, nil
}
