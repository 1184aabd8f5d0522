package formstruct

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// Test fixture builders for block graphs.

func geom(x, y, w, h float64) *types.Geometry {
	return &types.Geometry{
		BoundingBox: &types.BoundingBox{
			Left:   float32(x),
			Top:    float32(y),
			Width:  float32(w),
			Height: float32(h),
		},
	}
}

func wordBlock(id, text string, textType types.TextType, x, y, w, h float64) types.Block {
	return types.Block{
		Id:         aws.String(id),
		BlockType:  types.BlockTypeWord,
		Text:       aws.String(text),
		TextType:   textType,
		Confidence: aws.Float32(99),
		Geometry:   geom(x, y, w, h),
	}
}

func printedWord(id, text string, x, y float64) types.Block {
	return wordBlock(id, text, types.TextTypePrinted, x, y, 0.06, 0.02)
}

func handwrittenWord(id, text string, x, y float64) types.Block {
	return wordBlock(id, text, types.TextTypeHandwriting, x, y, 0.06, 0.02)
}

func childRel(ids ...string) []types.Relationship {
	if len(ids) == 0 {
		return nil
	}
	return []types.Relationship{{Type: types.RelationshipTypeChild, Ids: ids}}
}

func cellBlock(id string, row, col, colSpan int, conf float64, x, y, w, h float64, childIDs ...string) types.Block {
	return types.Block{
		Id:            aws.String(id),
		BlockType:     types.BlockTypeCell,
		RowIndex:      aws.Int32(int32(row)),
		ColumnIndex:   aws.Int32(int32(col)),
		RowSpan:       aws.Int32(1),
		ColumnSpan:    aws.Int32(int32(colSpan)),
		Confidence:    aws.Float32(float32(conf)),
		Geometry:      geom(x, y, w, h),
		Relationships: childRel(childIDs...),
	}
}

func mergedCellBlock(id string, row, col, colSpan int, x, y, w, h float64, childIDs ...string) types.Block {
	block := cellBlock(id, row, col, colSpan, 99, x, y, w, h, childIDs...)
	block.BlockType = types.BlockTypeMergedCell
	return block
}

func lineBlock(id, text string, conf, x, y, w, h float64) types.Block {
	return types.Block{
		Id:         aws.String(id),
		BlockType:  types.BlockTypeLine,
		Text:       aws.String(text),
		Confidence: aws.Float32(float32(conf)),
		Geometry:   geom(x, y, w, h),
	}
}

// pw and hw build bare words for tests that construct rows directly.

func pw(text string) Word {
	return Word{Text: text, TextType: types.TextTypePrinted, Confidence: 99}
}

func hw(text string) Word {
	return Word{Text: text, TextType: types.TextTypeHandwriting, Confidence: 99}
}
