// Package formsheet renders a structured form record into a reviewable PDF
// datasheet: title and legend on top, the scalar fields below, then the
// reconstructed table with one column per header key. Cells whose source
// confidence fell below the threshold are tinted so a reviewer can spot them.
package formsheet

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/quadrat/formscribe/pkg/formstruct"
)

// Render builds the datasheet PDF for a structured record.
// This function assumes the record was produced by a successful run, a nil
// record is rejected.
func Render(out *formstruct.StructuredOutput, cfg SheetConfig) ([]byte, error) {
	if out == nil {
		return nil, fmt.Errorf("nothing to render: record is nil")
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(cfg.Margin, cfg.Margin, cfg.Margin)
	pdf.SetAutoPageBreak(true, cfg.Margin)
	pdf.AddPage()

	drawTitle(pdf, out, cfg)
	drawUniversalFields(pdf, out, cfg)
	if err := drawTable(pdf, out, cfg); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func drawTitle(pdf *fpdf.Fpdf, out *formstruct.StructuredOutput, cfg SheetConfig) {
	title := "Structured form"
	if len(out.TitleLegend) > 0 {
		title = out.TitleLegend[0]
	}

	pdf.SetFont(cfg.TitleFont.Name, cfg.TitleFont.Style, cfg.TitleFont.Size)
	pdf.CellFormat(0, cfg.TitleFont.Size*1.4, encode(title), "", 1, "L", false, 0, "")

	pdf.SetFont(cfg.Font.Name, cfg.Font.Style, cfg.Font.Size)
	if len(out.TitleLegend) > 1 {
		for _, line := range out.TitleLegend[1:] {
			pdf.CellFormat(0, cfg.RowHeight*0.8, encode(line), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(cfg.TitleGap)
}

func drawUniversalFields(pdf *fpdf.Fpdf, out *formstruct.StructuredOutput, cfg SheetConfig) {
	if len(out.UniversalFields) == 0 {
		return
	}

	keys := make([]string, 0, len(out.UniversalFields))
	for key := range out.UniversalFields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pageW, _ := pdf.GetPageSize()
	usable := pageW - 2*cfg.Margin
	labelW := usable * 0.35

	for _, key := range keys {
		field := out.UniversalFields[key]
		pdf.SetFont(cfg.Font.Name, "B", cfg.Font.Size)
		pdf.CellFormat(labelW, cfg.RowHeight*0.8, encode(key), "", 0, "L", false, 0, "")
		pdf.SetFont(cfg.Font.Name, cfg.Font.Style, cfg.Font.Size)
		pdf.CellFormat(usable-labelW, cfg.RowHeight*0.8, encode(field.Value), "", 1, "L", false, 0, "")
	}
	pdf.Ln(cfg.TitleGap)
}

func drawTable(pdf *fpdf.Fpdf, out *formstruct.StructuredOutput, cfg SheetConfig) error {
	keys := headerKeysInColumnOrder(out)
	if cfg.MaxColumns > 0 && len(keys) > cfg.MaxColumns {
		keys = keys[:cfg.MaxColumns]
	}
	if len(keys) == 0 {
		return fmt.Errorf("nothing to render: header map is empty")
	}

	pageW, _ := pdf.GetPageSize()
	colW := (pageW - 2*cfg.Margin) / float64(len(keys))

	pdf.SetFont(cfg.HeaderFont.Name, cfg.HeaderFont.Style, cfg.HeaderFont.Size)
	pdf.SetFillColor(225, 225, 225)
	for _, key := range keys {
		label := out.HeaderMap[key].FieldName
		if label == "" {
			label = key
		}
		pdf.CellFormat(colW, cfg.RowHeight, clip(pdf, encode(label), colW), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(cfg.Font.Name, cfg.Font.Style, cfg.Font.Size)
	for _, row := range out.Rows {
		doubt := doubtByHeader(row)
		for _, key := range keys {
			fill := cfg.ShadeDoubt && doubt[key]
			if fill {
				pdf.SetFillColor(253, 221, 221)
			}
			pdf.CellFormat(colW, cfg.RowHeight, clip(pdf, encode(row.Values[key]), colW), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}
	return nil
}

// headerKeysInColumnOrder sorts the schema keys by their source column so the
// sheet reads left to right like the scanned form.
func headerKeysInColumnOrder(out *formstruct.StructuredOutput) []string {
	keys := make([]string, 0, len(out.HeaderMap))
	for key := range out.HeaderMap {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := out.HeaderMap[keys[i]].System, out.HeaderMap[keys[j]].System
		if a.ColumnIndex != b.ColumnIndex {
			return a.ColumnIndex < b.ColumnIndex
		}
		return keys[i] < keys[j]
	})
	return keys
}

func doubtByHeader(row formstruct.StructuredRow) map[string]bool {
	doubt := make(map[string]bool, len(row.System.Cells))
	for _, cell := range row.System.Cells {
		if cell.Doubt {
			doubt[cell.Header] = true
		}
	}
	return doubt
}

// encode converts text to ISO-8859-1 to avoid PDF encoding issues with the
// core fonts, falling back to the raw text when a rune has no mapping.
func encode(s string) string {
	latin1, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		return s
	}
	return latin1
}

// clip trims a cell's text to fit its column width, appending an ellipsis.
func clip(pdf *fpdf.Fpdf, s string, width float64) string {
	const pad = 4
	if pdf.GetStringWidth(s) <= width-pad {
		return s
	}
	for len(s) > 0 {
		s = strings.TrimRight(s[:len(s)-1], " ")
		if pdf.GetStringWidth(s+"...") <= width-pad {
			return s + "..."
		}
	}
	return s
}
