package sheet

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/dmorenoc/cronograma/internal/findings"
)

// Embedder writes a category's augmented workbook: the record rows plus
// the resized images anchored at their source cells.
type Embedder struct {
	sheetName   string
	columnWidth float64
	rowHeight   float64
	letters     map[int]string
	logger      *zap.Logger
}

// NewEmbedder builds an Embedder. letters maps image-column keys to the
// workbook column letter the image is anchored at.
func NewEmbedder(sheetName string, columnWidth, rowHeight float64, letters map[int]string, logger *zap.Logger) *Embedder {
	return &Embedder{
		sheetName:   sheetName,
		columnWidth: columnWidth,
		rowHeight:   rowHeight,
		letters:     letters,
		logger:      logger,
	}
}

// Write produces the workbook at outPath from the category rows and the
// processed image files named "{row}_{col}.<ext>". Per-image problems
// (malformed filename, unmapped column, broken picture) are logged and
// skipped; only workbook-structure failures abort.
func (e *Embedder) Write(cs findings.CategorySheet, processedDir, outPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", e.sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := e.writeRows(f, cs); err != nil {
		return err
	}
	if err := e.normalizeLayout(f, cs); err != nil {
		return err
	}
	e.placeImages(f, processedDir)

	if err := f.SaveAs(outPath); err != nil {
		return fmt.Errorf("save workbook %s: %w", outPath, err)
	}
	return nil
}

func (e *Embedder) writeRows(f *excelize.File, cs findings.CategorySheet) error {
	header := cs.Header
	if err := f.SetSheetRow(e.sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range cs.Rows {
		cell, err := excelize.CoordinatesToCellName(1, cs.DataRowNumber(i))
		if err != nil {
			return fmt.Errorf("row anchor: %w", err)
		}
		if err := f.SetSheetRow(e.sheetName, cell, &cs.Rows[i]); err != nil {
			return fmt.Errorf("write row %d: %w", cs.DataRowNumber(i), err)
		}
	}
	return nil
}

// normalizeLayout applies the uniform column width and row height before
// image placement.
func (e *Embedder) normalizeLayout(f *excelize.File, cs findings.CategorySheet) error {
	maxCols := len(cs.Header)
	for _, row := range cs.Rows {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}
	for _, letter := range e.letters {
		if n, err := excelize.ColumnNameToNumber(letter); err == nil && n > maxCols {
			maxCols = n
		}
	}
	endCol, err := excelize.ColumnNumberToName(maxCols)
	if err != nil {
		return fmt.Errorf("layout end column: %w", err)
	}
	if err := f.SetColWidth(e.sheetName, "A", endCol, e.columnWidth); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	for i := range cs.Rows {
		if err := f.SetRowHeight(e.sheetName, cs.DataRowNumber(i), e.rowHeight); err != nil {
			return fmt.Errorf("set row height: %w", err)
		}
	}
	return nil
}

func (e *Embedder) placeImages(f *excelize.File, processedDir string) {
	entries, err := os.ReadDir(processedDir)
	if err != nil {
		e.logger.Error("read processed dir failed", zap.String("dir", processedDir), zap.Error(err))
		return
	}
	e.logger.Info("embedding images", zap.Int("count", len(entries)))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(processedDir, entry.Name())
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		key, err := findings.ParseImageKey(name)
		if err != nil {
			e.logger.Error("malformed image filename", zap.String("path", path), zap.Error(err))
			continue
		}
		letter, ok := e.letters[key.Col]
		if !ok {
			e.logger.Error("image column not mapped",
				zap.Int("row", key.Row),
				zap.Int("col", key.Col),
				zap.String("path", path),
			)
			continue
		}
		cell := letter + strconv.Itoa(key.Row)
		if err := f.AddPicture(e.sheetName, cell, path, nil); err != nil {
			e.logger.Error("insert image failed",
				zap.String("cell", cell),
				zap.String("path", path),
				zap.Error(err),
			)
		}
	}
}
