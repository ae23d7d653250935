// Package organizer files papers into per-topic directories.
package organizer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"paperlens/internal/domain"
)

// Classify returns the topics whose label occurs in text, compared
// case-insensitively, in the order given. When none match, the first topic
// is returned so every document lands somewhere.
func Classify(topics []string, text string) []string {
	topics = Normalize(topics)
	if len(topics) == 0 {
		return nil
	}
	lower := strings.ToLower(text)
	var matched []string
	for _, t := range topics {
		if strings.Contains(lower, strings.ToLower(t)) {
			matched = append(matched, t)
		}
	}
	if len(matched) == 0 {
		return topics[:1]
	}
	return matched
}

// Normalize trims labels and drops blanks and exact duplicates.
func Normalize(topics []string) []string {
	seen := make(map[string]struct{}, len(topics))
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Organizer copies classified files under a document root.
type Organizer struct {
	root   string
	logger *slog.Logger
}

func New(root string, logger *slog.Logger) *Organizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Organizer{root: root, logger: logger}
}

// Root returns the document root directory.
func (o *Organizer) Root() string { return o.root }

// Place classifies text against topics and copies the file at path into
// <root>/<topic>/ for every matched topic. It returns the matched topics.
// The vector index is not touched.
func (o *Organizer) Place(ctx context.Context, path string, topics []string, text string) ([]string, error) {
	matched := Classify(topics, text)
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: no topics given", domain.ErrInvalidInput)
	}
	for _, topic := range matched {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir := filepath.Join(o.root, dirName(topic))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: creating %s: %v", domain.ErrClassificationIO, dir, err)
		}
		dst := filepath.Join(dir, filepath.Base(path))
		copied, err := copyFile(path, dst)
		if err != nil {
			return nil, fmt.Errorf("%w: copying %s to %s: %v", domain.ErrClassificationIO, path, dst, err)
		}
		if copied {
			o.logger.Info("copied paper into topic", "file", filepath.Base(path), "topic", topic)
		}
	}
	return matched, nil
}

// dirName keeps a topic label from escaping the document root.
func dirName(topic string) string {
	name := strings.NewReplacer("/", "_", `\`, "_").Replace(topic)
	if name == "." || name == ".." {
		name = strings.Repeat("_", len(name))
	}
	return name
}

// copyFile copies src to dst keeping mode and modification time. It reports
// false when both paths name the same file, including through symlinks and
// hard links.
func copyFile(src, dst string) (bool, error) {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return false, err
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return false, err
	}
	if absSrc == absDst {
		return false, nil
	}

	in, err := os.Open(src)
	if err != nil {
		return false, err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return false, err
	}
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(info, dstInfo) {
		return false, nil
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return false, err
	}
	if err := out.Close(); err != nil {
		return false, err
	}
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return false, err
	}
	return true, os.Chtimes(dst, info.ModTime(), info.ModTime())
}
