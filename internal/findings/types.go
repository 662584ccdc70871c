// Package findings defines core types shared across subsystems.
package findings

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"
)

// FailureKind classifies why a fetch or embed operation failed.
type FailureKind string

// Failure kinds logged with per-task context.
const (
	FailureHTTPStatus        FailureKind = "http_status"
	FailureNotAnImage        FailureKind = "not_an_image"
	FailureTimeout           FailureKind = "timeout"
	FailureNetworkError      FailureKind = "network_error"
	FailureUnexpected        FailureKind = "unexpected"
	FailureMappingError      FailureKind = "mapping_error"
	FailureMalformedFilename FailureKind = "malformed_filename"
)

// FetchError is the terminal failure of a download task.
type FetchError struct {
	Kind       FailureKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "fetch %s: %s", e.URL, e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *FetchError) Unwrap() error { return e.Err }

// ImageKey identifies a fetched image by its sheet coordinates. Row is the
// 1-based row number in the per-category sheet; Col is the image-column key
// from the configured column map.
type ImageKey struct {
	Row int
	Col int
}

func (k ImageKey) String() string {
	return strconv.Itoa(k.Row) + "_" + strconv.Itoa(k.Col)
}

// ParseImageKey parses a "{row}_{col}" key, the same format used for
// persisted filenames (before the extension).
func ParseImageKey(s string) (ImageKey, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 2 {
		return ImageKey{}, fmt.Errorf("malformed image key %q", s)
	}
	row, err := strconv.Atoi(parts[0])
	if err != nil {
		return ImageKey{}, fmt.Errorf("malformed image key %q: %w", s, err)
	}
	col, err := strconv.Atoi(parts[1])
	if err != nil {
		return ImageKey{}, fmt.Errorf("malformed image key %q: %w", s, err)
	}
	return ImageKey{Row: row, Col: col}, nil
}

// DownloadTask is one pending image retrieval. It exists only during
// acquisition and is never persisted.
type DownloadTask struct {
	URL string
	Key ImageKey
}

// FetchResult is the outcome of one DownloadTask.
type FetchResult struct {
	Bytes       []byte
	Base64      string
	ContentType string
}

// CategorySheet is a per-category record set: the master header plus the
// data rows assigned to one category, in source order. Row i of Rows sits
// at sheet row i+2 in the produced workbook.
type CategorySheet struct {
	Category string
	Header   []string
	Rows     [][]string
}

// DataRowNumber returns the 1-based sheet row of data row index i.
func (s CategorySheet) DataRowNumber(i int) int { return i + 2 }

// ReportImage is one gallery item of a report entry.
type ReportImage struct {
	Title    string
	Data     string
	Position string
}

// DataURI returns the inline payload for the HTML gallery. template.URL
// keeps html/template from mangling the data scheme.
func (i ReportImage) DataURI() template.URL {
	return template.URL("data:image/png;base64," + i.Data)
}

// ReportField is one field/value pair of an entry, in header order.
type ReportField struct {
	Name  string
	Value string
}

// ReportEntry is one record rendered as fields plus associated images.
type ReportEntry struct {
	Fields []ReportField
	Images []ReportImage
}

// ReportSection is one sheet's worth of entries.
type ReportSection struct {
	Title   string
	Entries []ReportEntry
}

// Report is the assembled content of one category's output workbook.
type Report struct {
	Filename string
	Sections []ReportSection
}
