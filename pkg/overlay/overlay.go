package overlay

import (
	"sort"

	"github.com/quadrat/formscribe/pkg/formstruct"
)

// BuildBoxes creates one overlay box per data cell of the structured output,
// in row order and then column order. The renderer consumes these read-only,
// together with the original scan, to draw labeled rectangles.
func BuildBoxes(out *formstruct.StructuredOutput) []Box {
	var boxes []Box
	for _, row := range out.Rows {
		ids := make([]string, 0, len(row.System.Cells))
		for id := range row.System.Cells {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			return row.System.Cells[ids[i]].ColumnIndex < row.System.Cells[ids[j]].ColumnIndex
		})

		for _, id := range ids {
			cell := row.System.Cells[id]
			boxes = append(boxes, Box{
				GroupID:    id,
				Key:        cell.Header,
				Value:      cell.Text,
				BBox:       cell.BBox,
				Confidence: cell.Confidence,
				Doubt:      cell.Doubt,
			})
		}
	}
	return boxes
}
