// Package report assembles and renders per-category HTML reports.
package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dmorenoc/cronograma/internal/findings"
	"github.com/dmorenoc/cronograma/internal/store"
)

// Assembler reconstructs report content from an augmented workbook file.
// The workbook, not the in-memory rows, is the source of truth, so a report
// can be regenerated from any prior output file.
type Assembler struct {
	excluded map[string]struct{}
	letters  map[int]string
}

// NewAssembler builds an Assembler. excluded names fields dropped from
// every entry; letters marks the image columns and supplies their position
// labels.
func NewAssembler(excluded []string, letters map[int]string) *Assembler {
	set := make(map[string]struct{}, len(excluded))
	for _, name := range excluded {
		set[name] = struct{}{}
	}
	return &Assembler{excluded: set, letters: letters}
}

// Assemble re-reads the workbook at path and pairs its image-reference
// cells with the store's payloads. Cells whose key is absent from the
// store contribute nothing; entries with no displayable fields are dropped.
func (a *Assembler) Assemble(path string, st *store.ImageStore) (findings.Report, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return findings.Report{}, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	report := findings.Report{Filename: path}
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return findings.Report{}, fmt.Errorf("read sheet %s: %w", sheetName, err)
		}
		report.Sections = append(report.Sections, a.assembleSection(sheetName, rows, st))
	}
	return report, nil
}

func (a *Assembler) assembleSection(title string, rows [][]string, st *store.ImageStore) findings.ReportSection {
	section := findings.ReportSection{Title: title}
	if len(rows) == 0 {
		return section
	}
	headers := rows[0]
	for i, row := range rows[1:] {
		entry := a.assembleEntry(headers, row, i+2, st)
		if len(entry.Fields) == 0 {
			continue
		}
		section.Entries = append(section.Entries, entry)
	}
	return section
}

func (a *Assembler) assembleEntry(headers, row []string, rowNum int, st *store.ImageStore) findings.ReportEntry {
	var entry findings.ReportEntry
	for idx, value := range row {
		if idx >= len(headers) {
			continue
		}
		header := headers[idx]
		if _, drop := a.excluded[header]; drop {
			continue
		}
		letter, isImageCol := a.letters[idx]
		if isImageCol && strings.HasPrefix(strings.TrimSpace(value), "http") {
			key := findings.ImageKey{Row: rowNum, Col: idx}
			if b64, ok := st.Get(key); ok {
				entry.Images = append(entry.Images, findings.ReportImage{
					Title:    header,
					Data:     b64,
					Position: "Columna " + letter,
				})
			}
			continue
		}
		entry.Fields = append(entry.Fields, findings.ReportField{Name: header, Value: value})
	}
	return entry
}
