package formstruct

import (
	"encoding/json"
	"fmt"
	"sort"
)

// StructuredOutput is the final record produced from one block graph: the
// form's title/legend, its scalar fields, the reconstructed column schema,
// and the data rows keyed by that schema.
type StructuredOutput struct {
	TitleLegend     []string                  `json:"title_legend"`
	UniversalFields map[string]UniversalField `json:"universal_fields"`
	HeaderMap       map[string]HeaderEntry    `json:"header_map"`
	Rows            []StructuredRow           `json:"rows"`
}

// UniversalField is one scalar form-level value outside the repeating table.
type UniversalField struct {
	Value       string      `json:"value"`
	Description string      `json:"description"`
	AltNames    []string    `json:"alt_names"`
	Merged      bool        `json:"merged"`
	System      FieldSystem `json:"system"`
}

// FieldSystem carries bookkeeping for downstream consumers of a field.
type FieldSystem struct {
	GroupID string `json:"group_id"`
	Valid   bool   `json:"valid"`
}

// HeaderEntry describes one canonical key of the table schema.
type HeaderEntry struct {
	FieldName   string       `json:"field_name"`
	System      HeaderSystem `json:"system"`
	Description string       `json:"description"`
	AltNames    []string     `json:"alt_names"`
}

// HeaderSystem locates a header key's source cell.
type HeaderSystem struct {
	Merged      bool   `json:"merged"`
	GroupID     string `json:"group_id"`
	ColumnIndex int    `json:"column_index"`
	RowIndex    int    `json:"row_index"`
}

// StructuredRow is one data row keyed by canonical header keys, with
// per-cell provenance under "system".
type StructuredRow struct {
	Values map[string]string
	System RowSystem
}

// RowSystem carries a data row's provenance.
type RowSystem struct {
	BBox     BBox                  `json:"bbox"`
	GroupID  string                `json:"group_id"`
	RowIndex int                   `json:"row_index"`
	Cells    map[string]CellDetail `json:"cells"`
}

// CellDetail is the provenance of a single data cell.
type CellDetail struct {
	BBox        BBox    `json:"bbox"`
	Confidence  float64 `json:"confidence"`
	Text        string  `json:"text"`
	Header      string  `json:"header"`
	Doubt       bool    `json:"doubt"`
	RowIndex    int     `json:"row_index"`
	ColumnIndex int     `json:"column_index"`
}

// MarshalJSON flattens the row's values next to the "system" object, so a
// row serializes as {"block": "B1", ..., "system": {...}}.
func (r StructuredRow) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Values)+1)
	for key, value := range r.Values {
		flat[key] = value
	}
	flat["system"] = r.System
	return json.Marshal(flat)
}

// UnmarshalJSON restores a row flattened by MarshalJSON.
func (r *StructuredRow) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	r.Values = make(map[string]string, len(flat))
	for key, raw := range flat {
		if key == "system" {
			if err := json.Unmarshal(raw, &r.System); err != nil {
				return err
			}
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return err
		}
		r.Values[key] = value
	}
	return nil
}

// AssembleOutput joins the classified rows, the header map, and the resolved
// field pairs into the final structured record. It fails with
// UnknownFormError when the header or data zone is empty; no partial output
// is ever returned on failure.
func AssembleOutput(rows []Row, headers *HeaderMap, pairs []FieldPair, cfg Config) (*StructuredOutput, error) {
	hasHeader, hasData := false, false
	for _, row := range rows {
		switch row.Zone {
		case ZoneHeader:
			hasHeader = true
		case ZoneData:
			hasData = true
		}
	}
	if !hasHeader {
		return nil, &UnknownFormError{Reason: "no header zone detected"}
	}
	if !hasData {
		return nil, &UnknownFormError{Reason: "no data zone detected"}
	}

	out := &StructuredOutput{
		UniversalFields: make(map[string]UniversalField),
		HeaderMap:       make(map[string]HeaderEntry),
	}

	for _, row := range rows {
		if row.Zone == ZoneTitleLegend {
			out.TitleLegend = append(out.TitleLegend, row.Text())
		}
	}

	// Later pairs overwrite earlier ones; the extractor appends the graph
	// path last so explicit key-value relationships win.
	for _, pair := range pairs {
		field := UniversalField{
			Value:  pair.Value,
			System: FieldSystem{GroupID: "universal_" + pair.Key, Valid: true},
		}
		if pair.Label != "" && pair.Label != pair.Key {
			field.AltNames = append(field.AltNames, pair.Label)
		}
		out.UniversalFields[pair.Key] = field
	}

	for _, field := range headers.Fields() {
		out.HeaderMap[field.Key] = HeaderEntry{
			FieldName: field.Label,
			System: HeaderSystem{
				Merged:      field.Merged,
				GroupID:     fmt.Sprintf("header_col_%d", field.Col),
				ColumnIndex: field.Col,
				RowIndex:    field.Row,
			},
		}
	}

	for _, row := range rows {
		if row.Zone != ZoneData {
			continue
		}
		out.Rows = append(out.Rows, assembleRow(row, headers, cfg))
	}
	return out, nil
}

func assembleRow(row Row, headers *HeaderMap, cfg Config) StructuredRow {
	structured := StructuredRow{
		Values: make(map[string]string),
		System: RowSystem{
			GroupID:  fmt.Sprintf("row_%d", row.Index),
			RowIndex: row.Index,
			Cells:    make(map[string]CellDetail),
		},
	}

	for _, cell := range dataCells(row, headers) {
		key := headers.KeyFor(cell.Col)
		structured.Values[key] = cell.Text
		structured.System.BBox = structured.System.BBox.Union(cell.BBox)
		structured.System.Cells[fmt.Sprintf("row_%d_col_%d", row.Index, cell.Col)] = CellDetail{
			BBox:        cell.BBox,
			Confidence:  cell.Confidence,
			Text:        cell.Text,
			Header:      key,
			Doubt:       cell.Confidence < cfg.ConfidenceThreshold,
			RowIndex:    row.Index,
			ColumnIndex: cell.Col,
		}
	}
	return structured
}

// dataCells returns the row's cells in column order. Rows built without
// table cells get synthetic cells: each word is assigned to the header
// column whose center is horizontally nearest.
func dataCells(row Row, headers *HeaderMap) []RowCell {
	if len(row.Cells) > 0 {
		cells := make([]RowCell, len(row.Cells))
		copy(cells, row.Cells)
		sort.SliceStable(cells, func(i, j int) bool { return cells[i].Col < cells[j].Col })
		return cells
	}

	fields := headers.Fields()
	byCol := make(map[int]*RowCell)
	for i, w := range row.Words {
		col := nearestColumn(w.XMid, fields, i+1)
		cell, ok := byCol[col]
		if !ok {
			byCol[col] = &RowCell{
				Row:        row.Index,
				Col:        col,
				ColSpan:    1,
				Text:       w.Text,
				Words:      []Word{w},
				BBox:       w.BBox,
				Confidence: w.Confidence,
			}
			continue
		}
		cell.Text = joinClean([]string{cell.Text, w.Text})
		cell.Words = append(cell.Words, w)
		cell.BBox = cell.BBox.Union(w.BBox)
		cell.Confidence = min(cell.Confidence, w.Confidence)
	}

	cols := make([]int, 0, len(byCol))
	for col := range byCol {
		cols = append(cols, col)
	}
	sort.Ints(cols)
	cells := make([]RowCell, 0, len(cols))
	for _, col := range cols {
		cells = append(cells, *byCol[col])
	}
	return cells
}

func nearestColumn(x float64, fields []HeaderField, fallback int) int {
	best, bestDist := fallback, -1.0
	for _, field := range fields {
		dist := field.centerX - x
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = field.Col, dist
		}
	}
	return best
}
