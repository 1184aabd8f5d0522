package overlay

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/quadrat/formscribe/pkg/formstruct"
)

//go:embed templates/report.tmpl
var templateFS embed.FS

// reportData is what the embedded template renders.
type reportData struct {
	Title           string
	TitleLegend     []string
	UniversalFields map[string]formstruct.UniversalField
	Boxes           []Box
}

// GenerateReport renders the structured output and its overlay boxes into a
// self-contained HTML debug report. Each box row carries the full box as
// data attributes, which is what ParseReport reads back.
func GenerateReport(out *formstruct.StructuredOutput, boxes []Box) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/report.tmpl")
	if err != nil {
		return "", err
	}

	title := "Form structure report"
	if len(out.TitleLegend) > 0 {
		title = out.TitleLegend[0]
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, reportData{
		Title:           title,
		TitleLegend:     out.TitleLegend,
		UniversalFields: out.UniversalFields,
		Boxes:           boxes,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
