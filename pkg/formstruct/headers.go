package formstruct

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// HeaderField describes one column of the reconstructed table schema.
type HeaderField struct {
	Key    string // canonical key, unique within the map
	Label  string // human-readable label the key was derived from
	Merged bool   // true when the key has a hierarchical (parent) origin
	Row    int    // source header row
	Col    int    // source column, 1-based

	centerX float64 // column center, used for word-to-column assignment
}

// HeaderMap maps column indices to canonical keys with per-key metadata.
type HeaderMap struct {
	byCol map[int]*HeaderField
}

// Fields returns the header fields ordered by column.
func (m *HeaderMap) Fields() []HeaderField {
	cols := make([]int, 0, len(m.byCol))
	for col := range m.byCol {
		cols = append(cols, col)
	}
	sort.Ints(cols)
	fields := make([]HeaderField, 0, len(cols))
	for _, col := range cols {
		fields = append(fields, *m.byCol[col])
	}
	return fields
}

// KeyFor returns the canonical key for a column, falling back to the
// synthetic "col_{index}" name for columns without a derived key.
func (m *HeaderMap) KeyFor(col int) string {
	if field, ok := m.byCol[col]; ok {
		return field.Key
	}
	return fmt.Sprintf("col_%d", col)
}

// Len returns the number of mapped columns.
func (m *HeaderMap) Len() int {
	return len(m.byCol)
}

type headerSpan struct {
	row   int
	start int
	end   int
	text  string
}

// BuildHeaderMap constructs the column-to-canonical-key schema from the
// header-zone rows. Explicit merged-cell spans become key prefixes for the
// leaf cells beneath them; free-standing caption lines directly above the
// leaf header row are reconciled as implicit parents when they visually
// cover at least two columns. The builder never fails: an empty header zone
// yields an empty map, which the assembler then rejects.
func BuildHeaderMap(ix *BlockIndex, rows []Row, cfg Config) *HeaderMap {
	m := &HeaderMap{byCol: make(map[int]*HeaderField)}

	var headerRows []Row
	structural := false
	for _, row := range rows {
		if row.Zone != ZoneHeader {
			continue
		}
		headerRows = append(headerRows, row)
		if len(row.Cells) > 0 {
			structural = true
		}
	}
	if len(headerRows) == 0 {
		return m
	}

	var leafBand bandStats
	if structural {
		leafBand = buildFromCells(m, ix, headerRows)
	} else {
		leafBand = buildFromWords(m, headerRows)
	}

	applyFloatingParents(m, ix, leafBand, cfg)
	fillMissingColumns(m, ix, leafBand)
	resolveCollisions(m)
	return m
}

// bandStats summarizes the leaf header row's geometry for the floating
// parent scan.
type bandStats struct {
	row       int
	top       float64
	height    float64
	width     float64
	totalCols int
}

// buildFromCells derives keys from header-zone cells. Merged-cell spans are
// recorded first; cells not covered by a same-row span become leaves whose
// key is the snake_case of any covering earlier-row span text plus their own
// text. Lower header rows overwrite higher ones for the same column, unless
// the lower cell is blank.
func buildFromCells(m *HeaderMap, ix *BlockIndex, headerRows []Row) bandStats {
	var spans []headerSpan
	for _, row := range headerRows {
		for _, cell := range row.Cells {
			if cell.Block.BlockType != types.BlockTypeMergedCell {
				continue
			}
			spans = append(spans, headerSpan{
				row:   cell.Row,
				start: cell.Col,
				end:   cell.Col + cell.ColSpan - 1,
				text:  ix.Text(cell.Block),
			})
		}
	}

	leafRow := headerRows[len(headerRows)-1]
	for _, row := range headerRows {
		for _, cell := range row.Cells {
			if cell.Block.BlockType != types.BlockTypeCell {
				continue
			}
			if coveredBySpan(spans, cell.Row, cell.Col) {
				continue
			}

			text := ix.Text(cell.Block)
			if existing, ok := m.byCol[cell.Col]; ok && text == "" && existing.Label != "" {
				continue
			}

			var parts []string
			label := text
			merged := false
			for _, span := range spans {
				if span.row < cell.Row && span.start <= cell.Col && cell.Col <= span.end {
					if p := ToSnakeCase(span.text); p != "" {
						parts = append(parts, p)
						merged = true
					}
				}
			}
			if leaf := ToSnakeCase(text); leaf != "" {
				parts = append(parts, leaf)
			}
			key := strings.Join(parts, "_")
			if key == "" {
				key = fmt.Sprintf("col_%d", cell.Col)
			}
			m.byCol[cell.Col] = &HeaderField{
				Key:     key,
				Label:   label,
				Merged:  merged,
				Row:     cell.Row,
				Col:     cell.Col,
				centerX: cell.BBox.CenterX(),
			}
		}
	}

	band := bandStats{row: leafRow.Index, top: 1.0}
	count := 0
	for _, cell := range leafRow.Cells {
		if cell.Block.BlockType != types.BlockTypeCell {
			continue
		}
		band.top = min(band.top, cell.BBox.Y)
		band.height += cell.BBox.H
		band.width += cell.BBox.W
		count++
	}
	if count > 0 {
		band.height /= float64(count)
		band.width /= float64(count)
	}
	band.totalCols = totalColumnCount(ix)
	return band
}

// buildFromWords derives keys from the bottom-most header row's words when
// the graph has no table cells. Each word claims one column ordinal, left
// to right.
func buildFromWords(m *HeaderMap, headerRows []Row) bandStats {
	leafRow := headerRows[len(headerRows)-1]
	band := bandStats{row: leafRow.Index, top: 1.0, totalCols: len(leafRow.Words)}

	for i, w := range leafRow.Words {
		col := i + 1
		key := ToSnakeCase(w.Text)
		if key == "" {
			key = fmt.Sprintf("col_%d", col)
		}
		m.byCol[col] = &HeaderField{
			Key:     key,
			Label:   w.Text,
			Row:     leafRow.Index,
			Col:     col,
			centerX: w.XMid,
		}
		band.top = min(band.top, w.BBox.Y)
		band.height += w.BBox.H
		band.width += w.BBox.W
	}
	if len(leafRow.Words) > 0 {
		band.height /= float64(len(leafRow.Words))
		band.width /= float64(len(leafRow.Words))
	}
	return band
}

func coveredBySpan(spans []headerSpan, row, col int) bool {
	for _, span := range spans {
		if span.row == row && span.start <= col && col <= span.end {
			return true
		}
	}
	return false
}

// applyFloatingParents scans free-standing LINE blocks sitting within
// roughly ParentBandRows leaf-row heights above the leaf header row. A line
// whose padded horizontal span covers at least two leaf-column centers is
// treated as an implicit shared parent: its text prefixes each covered
// column's key unless the key already carries that prefix. This is a
// heuristic for captions with no structural merge, not a correctness
// guarantee.
func applyFloatingParents(m *HeaderMap, ix *BlockIndex, band bandStats, cfg Config) {
	if m.Len() < 2 || band.height == 0 {
		return
	}

	lines := append([]types.Block{}, ix.OfType(types.BlockTypeLine)...)
	sort.SliceStable(lines, func(i, j int) bool {
		bi, bj := bboxOf(lines[i]), bboxOf(lines[j])
		if bi.Y != bj.Y {
			return bi.Y < bj.Y
		}
		return bi.X < bj.X
	})

	pad := max(cfg.SpanPaddingFloor, cfg.SpanPaddingRatio*band.width)
	lower := band.top - cfg.ParentBandRows*band.height
	upper := band.top + 0.5*band.height

	for _, line := range lines {
		if line.Confidence != nil && float64(*line.Confidence) < cfg.ParentMinConfidence {
			continue
		}
		bb := bboxOf(line)
		if bb.Bottom() < lower || bb.Bottom() > upper {
			continue
		}

		parentKey := ToSnakeCase(aws.ToString(line.Text))
		if parentKey == "" {
			continue
		}

		var covered []int
		for col, field := range m.byCol {
			if field.centerX >= bb.X-pad && field.centerX <= bb.Right()+pad {
				covered = append(covered, col)
			}
		}
		if len(covered) < 2 {
			continue
		}
		sort.Ints(covered)

		for _, col := range covered {
			field := m.byCol[col]
			if field.Key == parentKey || strings.HasPrefix(field.Key, parentKey+"_") {
				continue
			}
			field.Key = parentKey + "_" + field.Key
			field.Merged = true
		}
	}
}

// totalColumnCount is the widest column reached by any table cell in the
// graph, spans included.
func totalColumnCount(ix *BlockIndex) int {
	total := 0
	cells := append([]types.Block{}, ix.OfType(types.BlockTypeCell)...)
	cells = append(cells, ix.OfType(types.BlockTypeMergedCell)...)
	for _, cell := range cells {
		span := int(aws.ToInt32(cell.ColumnSpan))
		if span < 1 {
			span = 1
		}
		if end := int(aws.ToInt32(cell.ColumnIndex)) + span - 1; end > total {
			total = end
		}
	}
	return total
}

func fillMissingColumns(m *HeaderMap, ix *BlockIndex, band bandStats) {
	for col := 1; col <= band.totalCols; col++ {
		if _, ok := m.byCol[col]; ok {
			continue
		}
		m.byCol[col] = &HeaderField{
			Key: fmt.Sprintf("col_%d", col),
			Row: band.row,
			Col: col,
		}
	}
}

// resolveCollisions suffixes exact duplicate keys with their column index,
// scanning in deterministic (row, col) order so the first occurrence keeps
// the plain key.
func resolveCollisions(m *HeaderMap) {
	fields := make([]*HeaderField, 0, len(m.byCol))
	for _, field := range m.byCol {
		fields = append(fields, field)
	}
	sort.SliceStable(fields, func(i, j int) bool {
		if fields[i].Row != fields[j].Row {
			return fields[i].Row < fields[j].Row
		}
		return fields[i].Col < fields[j].Col
	})

	seen := make(map[string]bool, len(fields))
	for _, field := range fields {
		if seen[field.Key] {
			field.Key = fmt.Sprintf("%s_%d", field.Key, field.Col)
		}
		seen[field.Key] = true
	}
}
