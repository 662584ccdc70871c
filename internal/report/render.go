package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/dmorenoc/cronograma/internal/findings"
)

//go:embed template.html
var reportTemplate string

// Renderer serializes an assembled report into a self-contained HTML
// document: inline base64 images, gallery, and a click-to-enlarge modal.
type Renderer struct {
	tmpl      *template.Template
	fullWidth map[string]struct{}
	now       func() time.Time
}

// NewRenderer builds a Renderer. fullWidth names fields rendered across
// the whole card width.
func NewRenderer(fullWidth []string) (*Renderer, error) {
	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	set := make(map[string]struct{}, len(fullWidth))
	for _, name := range fullWidth {
		set[name] = struct{}{}
	}
	return &Renderer{tmpl: tmpl, fullWidth: set, now: time.Now}, nil
}

type fieldView struct {
	Name      string
	Value     string
	FullWidth bool
}

type entryView struct {
	Fields []fieldView
	Images []findings.ReportImage
}

type sectionView struct {
	Title   string
	Entries []entryView
}

type pageView struct {
	Category  string
	Generated string
	Sections  []sectionView
}

// Render writes the HTML document for one category. It is a pure function
// of its inputs apart from the generation timestamp in the header.
func (r *Renderer) Render(report findings.Report, category string, w io.Writer) error {
	page := pageView{
		Category:  category,
		Generated: r.now().Format("02/01/2006 a las 15:04"),
	}
	for _, section := range report.Sections {
		view := sectionView{Title: section.Title}
		for _, entry := range section.Entries {
			view.Entries = append(view.Entries, r.entryView(entry))
		}
		page.Sections = append(page.Sections, view)
	}
	if err := r.tmpl.Execute(w, page); err != nil {
		return fmt.Errorf("render report %s: %w", category, err)
	}
	return nil
}

// entryView drops fields that are blank after trimming; field order follows
// the header order established by the assembler.
func (r *Renderer) entryView(entry findings.ReportEntry) entryView {
	view := entryView{Images: entry.Images}
	for _, field := range entry.Fields {
		if strings.TrimSpace(field.Value) == "" {
			continue
		}
		_, full := r.fullWidth[field.Name]
		view.Fields = append(view.Fields, fieldView{
			Name:      field.Name,
			Value:     field.Value,
			FullWidth: full,
		})
	}
	return view
}
