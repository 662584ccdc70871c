// Package images resizes downloaded images for workbook embedding.
package images

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// Processor produces fixed-size copies of downloaded images. Resizing is
// lossy; only the embedded workbook copies go through it, the report keeps
// the original bytes.
type Processor struct {
	width  int
	height int
	logger *zap.Logger
}

// NewProcessor builds a Processor with the target geometry.
func NewProcessor(width, height int, logger *zap.Logger) *Processor {
	return &Processor{width: width, height: height, logger: logger}
}

// Process resizes every file in srcDir into dstDir under the same name.
// Files that cannot be decoded or re-encoded are logged and skipped.
func (p *Processor) Process(srcDir, dstDir string) error {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("read download dir %s: %w", srcDir, err)
	}
	p.logger.Info("processing images", zap.Int("count", len(entries)))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(srcDir, entry.Name())
		img, err := imaging.Open(src)
		if err != nil {
			p.logger.Error("decode image failed", zap.String("path", src), zap.Error(err))
			continue
		}
		resized := imaging.Resize(img, p.width, p.height, imaging.Lanczos)
		dst := filepath.Join(dstDir, entry.Name())
		if err := imaging.Save(resized, dst); err != nil {
			p.logger.Error("save resized image failed", zap.String("path", dst), zap.Error(err))
		}
	}
	return nil
}
