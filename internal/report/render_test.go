package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmorenoc/cronograma/internal/findings"
)

func renderedPage(t *testing.T, report findings.Report, category string) string {
	t.Helper()
	r, err := NewRenderer([]string{"ObservacionesHallazgo"})
	require.NoError(t, err)
	r.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }

	var sb strings.Builder
	require.NoError(t, r.Render(report, category, &sb))
	return sb.String()
}

func TestRenderProducesSelfContainedDocument(t *testing.T) {
	report := findings.Report{
		Sections: []findings.ReportSection{{
			Title: "Export",
			Entries: []findings.ReportEntry{{
				Fields: []findings.ReportField{
					{Name: "Id", Value: "77"},
					{Name: "ObservacionesHallazgo", Value: "pendiente de cierre"},
				},
				Images: []findings.ReportImage{
					{Title: "Foto 1", Data: "aGVsbG8=", Position: "Columna Y"},
				},
			}},
		}},
	}

	html := renderedPage(t, report, "Norte")

	assert.Contains(t, html, "Informe de Hallazgos")
	assert.Contains(t, html, "Norte")
	assert.Contains(t, html, "14/03/2026 a las 09:30")
	assert.Contains(t, html, "data:image/png;base64,aGVsbG8=")
	assert.Contains(t, html, "Foto 1")
	assert.Contains(t, html, "Columna Y")
	assert.NotContains(t, html, "ZgotmplZ")
}

func TestRenderFullWidthFields(t *testing.T) {
	report := findings.Report{
		Sections: []findings.ReportSection{{
			Title: "Export",
			Entries: []findings.ReportEntry{{
				Fields: []findings.ReportField{
					{Name: "ObservacionesHallazgo", Value: "texto largo"},
					{Name: "Id", Value: "1"},
				},
			}},
		}},
	}

	html := renderedPage(t, report, "Sur")
	assert.Contains(t, html, "data-item-full")
	assert.Contains(t, html, "texto largo")
}

func TestRenderOmitsBlankFields(t *testing.T) {
	report := findings.Report{
		Sections: []findings.ReportSection{{
			Title: "Export",
			Entries: []findings.ReportEntry{{
				Fields: []findings.ReportField{
					{Name: "Id", Value: "9"},
					{Name: "Vacio", Value: "   "},
				},
			}},
		}},
	}

	html := renderedPage(t, report, "Sur")
	assert.NotContains(t, html, "Vacio")
}

func TestRenderEscapesFieldValues(t *testing.T) {
	report := findings.Report{
		Sections: []findings.ReportSection{{
			Title: "Export",
			Entries: []findings.ReportEntry{{
				Fields: []findings.ReportField{
					{Name: "Id", Value: "<script>alert(1)</script>"},
				},
			}},
		}},
	}

	html := renderedPage(t, report, "Sur")
	assert.NotContains(t, html, "<script>alert(1)</script>")
}
