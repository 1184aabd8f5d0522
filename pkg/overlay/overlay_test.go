package overlay

import (
	"strings"
	"testing"

	"github.com/quadrat/formscribe/pkg/formstruct"
)

func sampleOutput() *formstruct.StructuredOutput {
	return &formstruct.StructuredOutput{
		TitleLegend: []string{"Vegetation Survey", "One row per plot"},
		UniversalFields: map[string]formstruct.UniversalField{
			"observer": {Value: "Jane Doe"},
		},
		Rows: []formstruct.StructuredRow{{
			Values: map[string]string{"species": "Oak", "count": "4"},
			System: formstruct.RowSystem{
				GroupID:  "row_2",
				RowIndex: 2,
				Cells: map[string]formstruct.CellDetail{
					"row_2_col_2": {
						BBox:        formstruct.BBox{X: 0.5, Y: 0.25, W: 0.25, H: 0.05},
						Confidence:  55.25,
						Text:        "4",
						Header:      "count",
						Doubt:       true,
						RowIndex:    2,
						ColumnIndex: 2,
					},
					"row_2_col_1": {
						BBox:        formstruct.BBox{X: 0.125, Y: 0.25, W: 0.25, H: 0.05},
						Confidence:  99.5,
						Text:        "Oak",
						Header:      "species",
						RowIndex:    2,
						ColumnIndex: 1,
					},
				},
			},
		}},
	}
}

func TestBuildBoxesColumnOrder(t *testing.T) {
	boxes := BuildBoxes(sampleOutput())
	if len(boxes) != 2 {
		t.Fatalf("got %d boxes, want 2", len(boxes))
	}
	if boxes[0].Key != "species" || boxes[1].Key != "count" {
		t.Errorf("box order = %q, %q; want species, count", boxes[0].Key, boxes[1].Key)
	}
	if boxes[0].GroupID != "row_2_col_1" {
		t.Errorf("first box group id = %q, want row_2_col_1", boxes[0].GroupID)
	}
	if !boxes[1].Doubt {
		t.Error("doubt flag lost on second box")
	}
}

func TestGenerateAndParseReportRoundTrip(t *testing.T) {
	out := sampleOutput()
	boxes := BuildBoxes(out)

	report, err := GenerateReport(out, boxes)
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if !strings.Contains(report, "Vegetation Survey") {
		t.Error("report missing the form title")
	}
	if !strings.Contains(report, "Jane Doe") {
		t.Error("report missing the universal field value")
	}

	parsed, err := ParseReport([]byte(report))
	if err != nil {
		t.Fatalf("ParseReport: %v", err)
	}
	if len(parsed) != len(boxes) {
		t.Fatalf("parsed %d boxes, want %d", len(parsed), len(boxes))
	}
	for i := range boxes {
		if parsed[i].GroupID != boxes[i].GroupID {
			t.Errorf("box %d group id = %q, want %q", i, parsed[i].GroupID, boxes[i].GroupID)
		}
		if parsed[i].Key != boxes[i].Key || parsed[i].Value != boxes[i].Value {
			t.Errorf("box %d key/value = %q/%q, want %q/%q",
				i, parsed[i].Key, parsed[i].Value, boxes[i].Key, boxes[i].Value)
		}
		if parsed[i].BBox != boxes[i].BBox {
			t.Errorf("box %d bbox = %+v, want %+v", i, parsed[i].BBox, boxes[i].BBox)
		}
		if parsed[i].Confidence != boxes[i].Confidence {
			t.Errorf("box %d confidence = %v, want %v", i, parsed[i].Confidence, boxes[i].Confidence)
		}
		if parsed[i].Doubt != boxes[i].Doubt {
			t.Errorf("box %d doubt = %v, want %v", i, parsed[i].Doubt, boxes[i].Doubt)
		}
	}
}

func TestParseReportRejectsBoxlessDocument(t *testing.T) {
	_, err := ParseReport([]byte("<html><body><p>nothing here</p></body></html>"))
	if err == nil {
		t.Fatal("expected an error for a report without box rows")
	}
}
