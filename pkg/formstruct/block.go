package formstruct

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// BBox is a page-normalized rectangle. All coordinates are fractions of the
// page in [0,1], matching the geometry of the source block graph.
type BBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Right returns the right edge X coordinate.
func (b BBox) Right() float64 { return b.X + b.W }

// Bottom returns the bottom edge Y coordinate. Page coordinates grow
// downward, so the bottom edge is the larger Y value.
func (b BBox) Bottom() float64 { return b.Y + b.H }

// CenterX returns the horizontal center.
func (b BBox) CenterX() float64 { return b.X + b.W/2 }

// CenterY returns the vertical center.
func (b BBox) CenterY() float64 { return b.Y + b.H/2 }

// Union returns the smallest box covering both boxes. An empty box acts as
// the identity.
func (b BBox) Union(other BBox) BBox {
	if b.W == 0 && b.H == 0 {
		return other
	}
	if other.W == 0 && other.H == 0 {
		return b
	}
	x := min(b.X, other.X)
	y := min(b.Y, other.Y)
	right := max(b.Right(), other.Right())
	bottom := max(b.Bottom(), other.Bottom())
	return BBox{X: x, Y: y, W: right - x, H: bottom - y}
}

func bboxOf(block types.Block) BBox {
	if block.Geometry == nil || block.Geometry.BoundingBox == nil {
		return BBox{}
	}
	bb := block.Geometry.BoundingBox
	return BBox{
		X: float64(bb.Left),
		Y: float64(bb.Top),
		W: float64(bb.Width),
		H: float64(bb.Height),
	}
}

// Word is a single OCR-recognized word with its page position.
type Word struct {
	Text       string
	TextType   types.TextType
	Confidence float64
	BBox       BBox
	XMid       float64
	YMid       float64
}

func wordOf(block types.Block) Word {
	bb := bboxOf(block)
	textType := block.TextType
	if textType == "" {
		textType = types.TextTypePrinted
	}
	confidence := 100.0
	if block.Confidence != nil {
		confidence = float64(*block.Confidence)
	}
	return Word{
		Text:       strings.TrimSpace(aws.ToString(block.Text)),
		TextType:   textType,
		Confidence: confidence,
		BBox:       bb,
		XMid:       bb.CenterX(),
		YMid:       bb.CenterY(),
	}
}

// BlockIndex provides id and type lookups over a read-only block graph.
// It is built once per run and never mutated afterwards.
type BlockIndex struct {
	byID   map[string]types.Block
	byType map[types.BlockType][]types.Block
}

// NewBlockIndex indexes the given blocks by identifier and by type.
// Blocks without an id are still reachable through their type bucket.
func NewBlockIndex(blocks []types.Block) *BlockIndex {
	ix := &BlockIndex{
		byID:   make(map[string]types.Block, len(blocks)),
		byType: make(map[types.BlockType][]types.Block),
	}
	for _, block := range blocks {
		if id := aws.ToString(block.Id); id != "" {
			ix.byID[id] = block
		}
		ix.byType[block.BlockType] = append(ix.byType[block.BlockType], block)
	}
	return ix
}

// Get returns the block with the given id.
func (ix *BlockIndex) Get(id string) (types.Block, bool) {
	block, ok := ix.byID[id]
	return block, ok
}

// OfType returns all blocks of the given type in input order.
func (ix *BlockIndex) OfType(t types.BlockType) []types.Block {
	return ix.byType[t]
}

// relationshipIDs returns the target ids of all relationships of the given
// type, in relationship order.
func relationshipIDs(block types.Block, relType types.RelationshipType) []string {
	var ids []string
	for _, rel := range block.Relationships {
		if rel.Type == relType {
			ids = append(ids, rel.Ids...)
		}
	}
	return ids
}

// ChildWords returns the direct CHILD words of a block. Dangling ids and
// non-word children are skipped.
func (ix *BlockIndex) ChildWords(block types.Block) []Word {
	var words []Word
	for _, id := range relationshipIDs(block, types.RelationshipTypeChild) {
		child, ok := ix.byID[id]
		if !ok || child.BlockType != types.BlockTypeWord {
			continue
		}
		words = append(words, wordOf(child))
	}
	return words
}

// Text resolves the text of a block by following CHILD relationships: words
// contribute directly, container blocks (cells, merged cells, layout
// elements) are resolved recursively. Relationship edges form a general
// directed graph and may contain cycles, so visited ids are tracked and
// revisits stop the walk.
func (ix *BlockIndex) Text(block types.Block) string {
	var parts []string
	ix.collectText(block, make(map[string]bool), &parts)
	return joinClean(parts)
}

func (ix *BlockIndex) collectText(block types.Block, visited map[string]bool, parts *[]string) {
	if id := aws.ToString(block.Id); id != "" {
		if visited[id] {
			return
		}
		visited[id] = true
	}
	if block.BlockType == types.BlockTypeWord {
		*parts = append(*parts, strings.TrimSpace(aws.ToString(block.Text)))
		return
	}
	for _, id := range relationshipIDs(block, types.RelationshipTypeChild) {
		child, ok := ix.byID[id]
		if !ok {
			continue
		}
		switch child.BlockType {
		case types.BlockTypeWord, types.BlockTypeCell, types.BlockTypeMergedCell,
			types.BlockTypeLayoutText, types.BlockTypeLayoutTable, types.BlockTypeLine:
			ix.collectText(child, visited, parts)
		}
	}
}
