package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessResizes(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "2_24.png"), pngBytes(t, 10, 20), 0o600))

	p := NewProcessor(300, 300, zap.NewNop())
	require.NoError(t, p.Process(src, dst))

	out, err := imaging.Open(filepath.Join(dst, "2_24.png"))
	require.NoError(t, err)
	assert.Equal(t, 300, out.Bounds().Dx())
	assert.Equal(t, 300, out.Bounds().Dy())
}

func TestProcessSkipsUndecodableFiles(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "2_24.png"), []byte("not an image"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "3_25.png"), pngBytes(t, 4, 4), 0o600))

	p := NewProcessor(300, 300, zap.NewNop())
	require.NoError(t, p.Process(src, dst))

	assert.NoFileExists(t, filepath.Join(dst, "2_24.png"))
	assert.FileExists(t, filepath.Join(dst, "3_25.png"))
}

func TestProcessMissingSourceDir(t *testing.T) {
	p := NewProcessor(300, 300, zap.NewNop())
	assert.Error(t, p.Process(filepath.Join(t.TempDir(), "nope"), t.TempDir()))
}
