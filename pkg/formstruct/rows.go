package formstruct

import (
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// RowStrategy selects how rows are reconstructed from the block graph.
type RowStrategy string

const (
	// StrategyStructural groups table cells by their RowIndex.
	StrategyStructural RowStrategy = "structural"
	// StrategyGeometric clusters words by the vertical proximity of their
	// centers, for graphs without any table cells.
	StrategyGeometric RowStrategy = "geometric"
)

// RowCell is one table cell inside a reconstructed row.
type RowCell struct {
	Block      types.Block
	Row        int
	Col        int
	ColSpan    int
	Text       string
	Words      []Word
	BBox       BBox
	Confidence float64
}

// Row is an ordered sequence of words in one horizontal band of the page.
// Structural rows also carry the cells the words came from.
type Row struct {
	Index       int
	YMid        float64
	Words       []Word
	Cells       []RowCell
	Composition Composition
	Zone        Zone
}

// Text returns the row's words joined with single spaces, left to right.
func (r Row) Text() string {
	parts := make([]string, 0, len(r.Words))
	for _, w := range r.Words {
		parts = append(parts, w.Text)
	}
	return joinClean(parts)
}

// BuildRows reconstructs ordered rows from the block graph using the given
// strategy. It fails with NoContentError if the graph has no WORD blocks at
// all, and with NoRowsError if words exist but the strategy produces no
// non-empty rows.
func BuildRows(ix *BlockIndex, strategy RowStrategy, cfg Config) ([]Row, error) {
	if len(ix.OfType(types.BlockTypeWord)) == 0 {
		return nil, &NoContentError{}
	}

	var rows []Row
	switch strategy {
	case StrategyGeometric:
		rows = buildGeometricRows(ix, cfg)
	default:
		rows = buildStructuralRows(ix)
	}
	if len(rows) == 0 {
		return nil, &NoRowsError{Strategy: strategy}
	}
	return rows, nil
}

// buildStructuralRows groups CELL and MERGED_CELL blocks by RowIndex and
// collects each cell's direct child words. Words within a cell are ordered
// top-to-bottom then left-to-right so multi-line cell text stays readable;
// cells within a row are ordered by column.
func buildStructuralRows(ix *BlockIndex) []Row {
	cellBlocks := append([]types.Block{}, ix.OfType(types.BlockTypeCell)...)
	cellBlocks = append(cellBlocks, ix.OfType(types.BlockTypeMergedCell)...)

	byRow := make(map[int][]types.Block)
	for _, block := range cellBlocks {
		byRow[int(aws.ToInt32(block.RowIndex))] = append(byRow[int(aws.ToInt32(block.RowIndex))], block)
	}

	indices := make([]int, 0, len(byRow))
	for idx := range byRow {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	var rows []Row
	for _, idx := range indices {
		cells := byRow[idx]
		sort.SliceStable(cells, func(i, j int) bool {
			return aws.ToInt32(cells[i].ColumnIndex) < aws.ToInt32(cells[j].ColumnIndex)
		})

		row := Row{Index: idx}
		for _, block := range cells {
			words := ix.ChildWords(block)
			sort.SliceStable(words, func(i, j int) bool {
				if words[i].YMid != words[j].YMid {
					return words[i].YMid < words[j].YMid
				}
				return words[i].XMid < words[j].XMid
			})

			texts := make([]string, 0, len(words))
			for _, w := range words {
				texts = append(texts, w.Text)
			}
			confidence := 100.0
			if block.Confidence != nil {
				confidence = float64(*block.Confidence)
			}
			span := int(aws.ToInt32(block.ColumnSpan))
			if span < 1 {
				span = 1
			}
			row.Cells = append(row.Cells, RowCell{
				Block:      block,
				Row:        idx,
				Col:        int(aws.ToInt32(block.ColumnIndex)),
				ColSpan:    span,
				Text:       joinClean(texts),
				Words:      words,
				BBox:       bboxOf(block),
				Confidence: confidence,
			})
			row.Words = append(row.Words, words...)
		}
		if len(row.Words) == 0 {
			continue
		}

		sum := 0.0
		for _, w := range row.Words {
			sum += w.YMid
		}
		row.YMid = sum / float64(len(row.Words))
		rows = append(rows, row)
	}
	return rows
}

// buildGeometricRows clusters all words by vertical proximity: words are
// taken in ascending y order and join the current row while their center
// stays within the gap threshold of the running centroid. Closed rows get
// synthetic 1-based ordinals in top-to-bottom order.
func buildGeometricRows(ix *BlockIndex, cfg Config) []Row {
	var words []Word
	for _, block := range ix.OfType(types.BlockTypeWord) {
		words = append(words, wordOf(block))
	}
	sort.SliceStable(words, func(i, j int) bool {
		return words[i].YMid < words[j].YMid
	})

	var rows []Row
	var current []Word
	centroid := 0.0

	closeRow := func() {
		if len(current) == 0 {
			return
		}
		sorted := current
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].XMid < sorted[j].XMid
		})
		rows = append(rows, Row{
			Index: len(rows) + 1,
			YMid:  centroid,
			Words: sorted,
		})
	}

	for _, w := range words {
		if len(current) == 0 {
			current = []Word{w}
			centroid = w.YMid
			continue
		}
		if w.YMid-centroid < cfg.RowGapThreshold {
			current = append(current, w)
			centroid = (centroid + w.YMid) / 2
		} else {
			closeRow()
			current = []Word{w}
			centroid = w.YMid
		}
	}
	closeRow()
	return rows
}
