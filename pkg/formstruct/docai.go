package formstruct

import (
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// LoadDocAIDocument decodes a saved Google Document AI response. Unknown
// fields are tolerated so responses from newer processor versions still load.
func LoadDocAIDocument(data []byte) (*documentaipb.Document, error) {
	doc := &documentaipb.Document{}
	opts := protojson.UnmarshalOptions{DiscardUnknown: true}
	if err := opts.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to decode Document AI response: %w", err)
	}
	return doc, nil
}

// BlocksFromDocAI adapts a Document AI response into the block graph the
// engine consumes, so both Textract and Document AI feed one pipeline:
// tokens become WORD blocks (handwriting detected from token style info),
// detected lines become LINE blocks, table cells become CELL or MERGED_CELL
// blocks with child word relationships, and form fields become paired
// KEY_VALUE_SET blocks. The conversion is pure; it performs no network calls.
func BlocksFromDocAI(doc *documentaipb.Document) []types.Block {
	var blocks []types.Block
	if doc == nil {
		return blocks
	}

	for _, page := range doc.GetPages() {
		pageNum := int(page.GetPageNumber())
		if pageNum == 0 {
			pageNum = 1
		}

		tokens := indexTokens(page, doc.GetText())
		for _, tok := range tokens {
			textType := types.TextTypePrinted
			if tok.handwritten {
				textType = types.TextTypeHandwriting
			}
			blocks = append(blocks, types.Block{
				Id:         aws.String(tok.id),
				BlockType:  types.BlockTypeWord,
				Text:       aws.String(tok.text),
				TextType:   textType,
				Confidence: aws.Float32(tok.confidence),
				Geometry:   geometryFromPoly(tok.poly),
			})
		}

		for i, line := range page.GetLines() {
			layout := line.GetLayout()
			blocks = append(blocks, types.Block{
				Id:         aws.String(fmt.Sprintf("p%d-line-%d", pageNum, i+1)),
				BlockType:  types.BlockTypeLine,
				Text:       aws.String(strings.TrimSpace(textFromLayout(layout, doc.GetText()))),
				Confidence: aws.Float32(layout.GetConfidence() * 100),
				Geometry:   geometryFromPoly(layout.GetBoundingPoly()),
			})
		}

		for ti, table := range page.GetTables() {
			blocks = append(blocks, tableBlocks(table, tokens, pageNum, ti+1)...)
		}

		for fi, field := range page.GetFormFields() {
			blocks = append(blocks, formFieldBlocks(field, tokens, pageNum, fi+1)...)
		}
	}
	return blocks
}

// docaiToken is one Document AI token with the text-anchor range used to
// attach it to containing cells and fields.
type docaiToken struct {
	id          string
	text        string
	confidence  float32
	handwritten bool
	start, end  int64
	poly        *documentaipb.BoundingPoly
}

func indexTokens(page *documentaipb.Document_Page, fullText string) []docaiToken {
	tokens := make([]docaiToken, 0, len(page.GetTokens()))
	pageNum := int(page.GetPageNumber())
	if pageNum == 0 {
		pageNum = 1
	}
	for i, token := range page.GetTokens() {
		layout := token.GetLayout()
		start, end, ok := anchorRange(layout)
		if !ok {
			continue
		}
		tokens = append(tokens, docaiToken{
			id:          fmt.Sprintf("p%d-word-%d", pageNum, i+1),
			text:        strings.TrimSpace(textFromLayout(layout, fullText)),
			confidence:  layout.GetConfidence() * 100,
			handwritten: token.GetStyleInfo().GetHandwritten(),
			start:       start,
			end:         end,
			poly:        layout.GetBoundingPoly(),
		})
	}
	return tokens
}

// tableBlocks converts one Document AI table into CELL and MERGED_CELL
// blocks. Column positions are tracked through an occupancy grid so row- and
// column-spanning cells shift their neighbors the way the source layout does.
func tableBlocks(table *documentaipb.Document_Page_Table, tokens []docaiToken, pageNum, tableNum int) []types.Block {
	var blocks []types.Block
	occupied := make(map[[2]int]bool)
	rowIdx := 0

	convertRows := func(rows []*documentaipb.Document_Page_Table_TableRow) {
		for _, row := range rows {
			rowIdx++
			col := 1
			for ci, cell := range row.GetCells() {
				for occupied[[2]int{rowIdx, col}] {
					col++
				}
				colSpan := int(cell.GetColSpan())
				if colSpan < 1 {
					colSpan = 1
				}
				rowSpan := int(cell.GetRowSpan())
				if rowSpan < 1 {
					rowSpan = 1
				}
				for r := rowIdx; r < rowIdx+rowSpan; r++ {
					for c := col; c < col+colSpan; c++ {
						occupied[[2]int{r, c}] = true
					}
				}

				blockType := types.BlockTypeCell
				if colSpan > 1 || rowSpan > 1 {
					blockType = types.BlockTypeMergedCell
				}
				layout := cell.GetLayout()
				block := types.Block{
					Id:          aws.String(fmt.Sprintf("p%d-table%d-r%d-c%d-%d", pageNum, tableNum, rowIdx, col, ci)),
					BlockType:   blockType,
					RowIndex:    aws.Int32(int32(rowIdx)),
					ColumnIndex: aws.Int32(int32(col)),
					RowSpan:     aws.Int32(int32(rowSpan)),
					ColumnSpan:  aws.Int32(int32(colSpan)),
					Confidence:  aws.Float32(layout.GetConfidence() * 100),
					Geometry:    geometryFromPoly(layout.GetBoundingPoly()),
				}
				if ids := tokenIDsInLayout(layout, tokens); len(ids) > 0 {
					block.Relationships = []types.Relationship{{
						Type: types.RelationshipTypeChild,
						Ids:  ids,
					}}
				}
				blocks = append(blocks, block)
				col += colSpan
			}
		}
	}

	convertRows(table.GetHeaderRows())
	convertRows(table.GetBodyRows())
	return blocks
}

// formFieldBlocks converts one form field into a KEY block linked to its
// VALUE block, mirroring the key-value pairing of the Textract graph.
func formFieldBlocks(field *documentaipb.Document_Page_FormField, tokens []docaiToken, pageNum, fieldNum int) []types.Block {
	keyID := fmt.Sprintf("p%d-key-%d", pageNum, fieldNum)
	valueID := fmt.Sprintf("p%d-value-%d", pageNum, fieldNum)

	keyBlock := types.Block{
		Id:          aws.String(keyID),
		BlockType:   types.BlockTypeKeyValueSet,
		EntityTypes: []types.EntityType{types.EntityTypeKey},
		Confidence:  aws.Float32(field.GetFieldName().GetConfidence() * 100),
		Geometry:    geometryFromPoly(field.GetFieldName().GetBoundingPoly()),
		Relationships: []types.Relationship{{
			Type: types.RelationshipTypeValue,
			Ids:  []string{valueID},
		}},
	}
	if ids := tokenIDsInLayout(field.GetFieldName(), tokens); len(ids) > 0 {
		keyBlock.Relationships = append(keyBlock.Relationships, types.Relationship{
			Type: types.RelationshipTypeChild,
			Ids:  ids,
		})
	}

	valueBlock := types.Block{
		Id:          aws.String(valueID),
		BlockType:   types.BlockTypeKeyValueSet,
		EntityTypes: []types.EntityType{types.EntityTypeValue},
		Confidence:  aws.Float32(field.GetFieldValue().GetConfidence() * 100),
		Geometry:    geometryFromPoly(field.GetFieldValue().GetBoundingPoly()),
	}
	if ids := tokenIDsInLayout(field.GetFieldValue(), tokens); len(ids) > 0 {
		valueBlock.Relationships = []types.Relationship{{
			Type: types.RelationshipTypeChild,
			Ids:  ids,
		}}
	}

	return []types.Block{keyBlock, valueBlock}
}

// tokenIDsInLayout returns the ids of tokens whose text-anchor range falls
// within the layout's range, in token order.
func tokenIDsInLayout(layout *documentaipb.Document_Page_Layout, tokens []docaiToken) []string {
	start, end, ok := anchorRange(layout)
	if !ok {
		return nil
	}
	var ids []string
	for _, tok := range tokens {
		if tok.start >= start && tok.end <= end {
			ids = append(ids, tok.id)
		}
	}
	return ids
}

// anchorRange returns the first text segment range of a layout.
func anchorRange(layout *documentaipb.Document_Page_Layout) (start, end int64, ok bool) {
	anchor := layout.GetTextAnchor()
	if anchor == nil || len(anchor.GetTextSegments()) == 0 {
		return 0, 0, false
	}
	seg := anchor.GetTextSegments()[0]
	return int64(seg.GetStartIndex()), int64(seg.GetEndIndex()), true
}

// textFromLayout extracts text from a layout's text anchor segments.
func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText string) string {
	if layout == nil || layout.GetTextAnchor() == nil {
		return ""
	}
	runes := []rune(fullText)
	var result strings.Builder
	total := len(runes)

	for _, seg := range layout.GetTextAnchor().GetTextSegments() {
		start := int(seg.GetStartIndex())
		end := int(seg.GetEndIndex())
		if start < 0 {
			start = 0
		}
		if end > total {
			end = total
		}
		if start > end {
			start = end
		}
		result.WriteString(string(runes[start:end]))
	}
	return result.String()
}

// geometryFromPoly converts a normalized bounding polygon into the
// rectangular geometry the block graph uses.
func geometryFromPoly(poly *documentaipb.BoundingPoly) *types.Geometry {
	vertices := poly.GetNormalizedVertices()
	if len(vertices) == 0 {
		return nil
	}
	minX, minY := vertices[0].GetX(), vertices[0].GetY()
	maxX, maxY := minX, minY
	for _, v := range vertices[1:] {
		minX = min(minX, v.GetX())
		minY = min(minY, v.GetY())
		maxX = max(maxX, v.GetX())
		maxY = max(maxY, v.GetY())
	}
	return &types.Geometry{
		BoundingBox: &types.BoundingBox{
			Left:   minX,
			Top:    minY,
			Width:  maxX - minX,
			Height: maxY - minY,
		},
	}
}

// ToJSON converts a value to a pretty-printed JSON string. Protocol buffer
// messages go through protojson, everything else through the standard
// library.
func ToJSON(data interface{}) (string, error) {
	switch v := data.(type) {
	case proto.Message:
		jsonData, err := protojson.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(jsonData), nil
	default:
		jsonData, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(jsonData), nil
	}
}
