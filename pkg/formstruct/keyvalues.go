package formstruct

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// FieldPair is one resolved scalar field: a canonical key, the label it was
// derived from, and the value text.
type FieldPair struct {
	Key   string
	Label string
	Value string
}

// ExtractUniversalFields resolves the form's scalar fields from two sources:
// rows classified as UNIVERSAL (pattern-matched on a key/value separator)
// and explicit KEY_VALUE_SET relationships in the graph. The graph path runs
// last, so it wins when both derive the same key; duplicates never raise an
// error.
func ExtractUniversalFields(ix *BlockIndex, rows []Row) []FieldPair {
	pairs := rowPatternFields(rows)

	tableTop := tableTopBoundary(rows)
	pairs = append(pairs, graphFields(ix, tableTop)...)
	return pairs
}

// tableTopBoundary is the minimum row center over all rows; key-value blocks
// below it belong to the table and are already captured through the table
// path.
func tableTopBoundary(rows []Row) float64 {
	top := 1.0
	for _, row := range rows {
		if row.YMid < top {
			top = row.YMid
		}
	}
	return top
}

// rowPatternFields splits each universal row's text on the first ':'
// (preferred) or '-' into a canonicalized key and a trimmed value. Rows
// without a separator, or with an empty side, are skipped.
func rowPatternFields(rows []Row) []FieldPair {
	var pairs []FieldPair
	for _, row := range rows {
		if row.Zone != ZoneUniversal {
			continue
		}
		text := row.Text()
		sep := strings.Index(text, ":")
		if sep < 0 {
			sep = strings.Index(text, "-")
		}
		if sep < 0 {
			continue
		}
		label := strings.TrimSpace(text[:sep])
		value := strings.TrimSpace(text[sep+1:])
		key := ToSnakeCase(label)
		if key == "" || value == "" {
			continue
		}
		pairs = append(pairs, FieldPair{Key: key, Label: label, Value: value})
	}
	return pairs
}

// graphFields resolves pairs from KEY_VALUE_SET blocks above the table top.
// Key text comes from the key block's own child words; value text follows
// the VALUE relationship to the paired block and then that block's child
// words.
func graphFields(ix *BlockIndex, tableTop float64) []FieldPair {
	var pairs []FieldPair
	for _, block := range ix.OfType(types.BlockTypeKeyValueSet) {
		if !hasEntityType(block, types.EntityTypeKey) {
			continue
		}
		if bboxOf(block).Y >= tableTop {
			continue
		}

		label := strings.TrimSuffix(ix.Text(block), ":")
		key := ToSnakeCase(label)
		if key == "" {
			continue
		}

		var value string
		for _, id := range relationshipIDs(block, types.RelationshipTypeValue) {
			valueBlock, ok := ix.Get(id)
			if !ok {
				continue
			}
			value = ix.Text(valueBlock)
			if value != "" {
				break
			}
		}
		if value == "" {
			continue
		}
		pairs = append(pairs, FieldPair{Key: key, Label: strings.TrimSpace(label), Value: value})
	}
	return pairs
}

func hasEntityType(block types.Block, entity types.EntityType) bool {
	for _, e := range block.EntityTypes {
		if e == entity {
			return true
		}
	}
	return false
}
