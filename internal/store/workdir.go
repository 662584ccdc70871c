package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/dmorenoc/cronograma/internal/findings"
)

// WorkDirs owns the scratch directories used while a category is being
// processed: Download receives raw fetched bytes, Processed the resized
// copies. Both are emptied before each category and the whole root is
// removed at the end of the run.
type WorkDirs struct {
	Root      string
	Download  string
	Processed string
}

// NewWorkDirs creates the scratch tree rooted at root. An empty root
// allocates a fresh directory under the system temp dir, named by runID.
func NewWorkDirs(root, runID string) (*WorkDirs, error) {
	if strings.TrimSpace(root) == "" {
		root = filepath.Join(os.TempDir(), "cronograma-"+runID)
	}
	w := &WorkDirs{
		Root:      root,
		Download:  filepath.Join(root, "downloads"),
		Processed: filepath.Join(root, "processed"),
	}
	for _, dir := range []string{w.Root, w.Download, w.Processed} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create work dir %s: %w", dir, err)
		}
	}
	return w, nil
}

// SaveDownload persists raw image bytes under "{row}_{col}.{ext}" and
// returns the written path.
func (w *WorkDirs) SaveDownload(key findings.ImageKey, ext string, data []byte) (string, error) {
	path := filepath.Join(w.Download, key.String()+"."+ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write download %s: %w", path, err)
	}
	return path, nil
}

// Empty removes every file in both scratch directories. Per-file failures
// are logged and skipped; the first one is returned so callers can decide
// whether a dirty directory is acceptable.
func (w *WorkDirs) Empty(logger *zap.Logger) error {
	var first error
	for _, dir := range []string{w.Download, w.Processed} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if first == nil {
				first = fmt.Errorf("read work dir %s: %w", dir, err)
			}
			continue
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if err := os.RemoveAll(path); err != nil {
				logger.Error("remove scratch file failed", zap.String("path", path), zap.Error(err))
				if first == nil {
					first = err
				}
			}
		}
	}
	return first
}

// Remove deletes the whole scratch tree.
func (w *WorkDirs) Remove() error {
	if err := os.RemoveAll(w.Root); err != nil {
		return fmt.Errorf("remove work dir %s: %w", w.Root, err)
	}
	return nil
}
