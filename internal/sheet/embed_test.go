package sheet

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/dmorenoc/cronograma/internal/findings"
)

var testLetters = map[int]string{24: "Y", 25: "Z", 26: "AA", 27: "AB", 28: "AC", 29: "AD"}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testEmbedder(logger *zap.Logger) *Embedder {
	return NewEmbedder("Export", 50, 245, testLetters, logger)
}

func categorySheet() findings.CategorySheet {
	row := make([]string, 30)
	row[0] = "1"
	row[1] = "Norte"
	row[24] = "http://img/a.jpg"
	return findings.CategorySheet{
		Category: "Norte",
		Header:   []string{"Id", "Cobertura"},
		Rows:     [][]string{row},
	}
}

func TestWriteEmbedsImages(t *testing.T) {
	processed := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(processed, "2_24.png"), testPNG(t), 0o600))

	outPath := filepath.Join(t.TempDir(), "Norte.xlsx")
	require.NoError(t, testEmbedder(zap.NewNop()).Write(categorySheet(), processed, outPath))

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Export")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "Id", rows[0][0])
	assert.Equal(t, "Norte", rows[1][1])

	pics, err := f.GetPictures("Export", "Y2")
	require.NoError(t, err)
	assert.Len(t, pics, 1)

	height, err := f.GetRowHeight("Export", 2)
	require.NoError(t, err)
	assert.Equal(t, 245.0, height)
}

func TestWriteSkipsMalformedFilenames(t *testing.T) {
	processed := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(processed, "badname.png"), testPNG(t), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(processed, "1_2_3.png"), testPNG(t), 0o600))

	outPath := filepath.Join(t.TempDir(), "Norte.xlsx")
	require.NoError(t, testEmbedder(zap.NewNop()).Write(categorySheet(), processed, outPath))

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer f.Close()

	pics, err := f.GetPictures("Export", "Y2")
	require.NoError(t, err)
	assert.Empty(t, pics)
}

func TestWriteSkipsUnmappedColumns(t *testing.T) {
	processed := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(processed, "2_99.png"), testPNG(t), 0o600))

	outPath := filepath.Join(t.TempDir(), "Norte.xlsx")
	require.NoError(t, testEmbedder(zap.NewNop()).Write(categorySheet(), processed, outPath))

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Export")
	require.NoError(t, err)
	assert.NotEmpty(t, rows, "workbook must still be written")
}
