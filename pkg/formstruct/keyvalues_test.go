package formstruct

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

func keyValuePair(keyID, valueID string, y float64, keyWordIDs, valueWordIDs []string) []types.Block {
	keyBlock := types.Block{
		Id:          aws.String(keyID),
		BlockType:   types.BlockTypeKeyValueSet,
		EntityTypes: []types.EntityType{types.EntityTypeKey},
		Confidence:  aws.Float32(99),
		Geometry:    geom(0.1, y, 0.1, 0.02),
		Relationships: []types.Relationship{
			{Type: types.RelationshipTypeValue, Ids: []string{valueID}},
			{Type: types.RelationshipTypeChild, Ids: keyWordIDs},
		},
	}
	valueBlock := types.Block{
		Id:            aws.String(valueID),
		BlockType:     types.BlockTypeKeyValueSet,
		EntityTypes:   []types.EntityType{types.EntityTypeValue},
		Confidence:    aws.Float32(99),
		Geometry:      geom(0.25, y, 0.1, 0.02),
		Relationships: childRel(valueWordIDs...),
	}
	return []types.Block{keyBlock, valueBlock}
}

func TestRowPatternFields(t *testing.T) {
	rows := []Row{
		{Index: 1, Zone: ZoneUniversal, Words: []Word{pw("Date:"), hw("2024-05-01")}},
		{Index: 2, Zone: ZoneUniversal, Words: []Word{pw("Weather"), hw("sunny")}},
		{Index: 3, Zone: ZoneUniversal, Words: []Word{pw("Crew"), pw("-"), hw("two")}},
		{Index: 4, Zone: ZoneData, Words: []Word{pw("Ratio:"), hw("ignored")}},
	}
	pairs := rowPatternFields(rows)
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}
	if pairs[0].Key != "date" || pairs[0].Value != "2024-05-01" {
		t.Errorf("pair 0 = %+v, want key date value 2024-05-01", pairs[0])
	}
	if pairs[1].Key != "crew" || pairs[1].Value != "two" {
		t.Errorf("pair 1 = %+v, want key crew value two", pairs[1])
	}
}

func TestGraphFields(t *testing.T) {
	blocks := []types.Block{
		printedWord("kw1", "Observer:", 0.1, 0.05),
		handwrittenWord("vw1", "Jane", 0.25, 0.05),
		handwrittenWord("vw2", "Doe", 0.32, 0.05),
	}
	blocks = append(blocks, keyValuePair("k1", "v1", 0.05, []string{"kw1"}, []string{"vw1", "vw2"})...)

	pairs := graphFields(NewBlockIndex(blocks), 0.3)
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(pairs))
	}
	if pairs[0].Key != "observer" {
		t.Errorf("key = %q, want %q", pairs[0].Key, "observer")
	}
	if pairs[0].Label != "Observer" {
		t.Errorf("label = %q, want %q (separator trimmed)", pairs[0].Label, "Observer")
	}
	if pairs[0].Value != "Jane Doe" {
		t.Errorf("value = %q, want %q", pairs[0].Value, "Jane Doe")
	}
}

func TestGraphFieldsSkipsBlocksBelowTable(t *testing.T) {
	blocks := []types.Block{
		printedWord("kw1", "Total:", 0.1, 0.55),
		handwrittenWord("vw1", "12", 0.25, 0.55),
	}
	blocks = append(blocks, keyValuePair("k1", "v1", 0.55, []string{"kw1"}, []string{"vw1"})...)

	pairs := graphFields(NewBlockIndex(blocks), 0.3)
	if len(pairs) != 0 {
		t.Fatalf("got %d pairs, want 0 (key sits inside the table)", len(pairs))
	}
}

func TestExtractUniversalFieldsGraphWins(t *testing.T) {
	// Both paths derive "observer"; the graph pair must come last so map
	// assembly keeps its value.
	blocks := []types.Block{
		printedWord("kw1", "Observer:", 0.1, 0.05),
		handwrittenWord("vw1", "Jane", 0.25, 0.05),
	}
	blocks = append(blocks, keyValuePair("k1", "v1", 0.05, []string{"kw1"}, []string{"vw1"})...)

	rows := []Row{
		{Index: 1, Zone: ZoneUniversal, YMid: 0.31, Words: []Word{pw("Observer:"), hw("Smith")}},
		{Index: 2, Zone: ZoneData, YMid: 0.40, Words: []Word{hw("Oak")}},
	}
	pairs := ExtractUniversalFields(NewBlockIndex(blocks), rows)
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}
	last := pairs[len(pairs)-1]
	if last.Key != "observer" || last.Value != "Jane" {
		t.Errorf("last pair = %+v, want graph-derived observer=Jane", last)
	}
}
