// Package sheet loads, partitions, and writes inspection workbooks.
package sheet

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dmorenoc/cronograma/internal/findings"
)

// LoadMaster reads the named sheet of the master workbook as raw rows.
func LoadMaster(path, sheetName string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheetName, err)
	}
	return rows, nil
}

// Partition splits master rows into per-category record sets. The first
// row is the header and seeds every produced set; rows with a blank value
// in the 1-based categoryColumn are dropped. Categories are ordered by
// first occurrence, rows within a category by source order.
func Partition(rows [][]string, categoryColumn int) []findings.CategorySheet {
	if len(rows) == 0 {
		return nil
	}
	header := rows[0]
	idx := categoryColumn - 1

	byCategory := make(map[string]int)
	var sheets []findings.CategorySheet

	for _, row := range rows[1:] {
		if idx >= len(row) {
			continue
		}
		category := strings.TrimSpace(row[idx])
		if category == "" {
			continue
		}
		pos, ok := byCategory[category]
		if !ok {
			pos = len(sheets)
			byCategory[category] = pos
			sheets = append(sheets, findings.CategorySheet{
				Category: category,
				Header:   header,
			})
		}
		sheets[pos].Rows = append(sheets[pos].Rows, row)
	}

	return sheets
}
