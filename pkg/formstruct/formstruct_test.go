package formstruct

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// surveyFormBlocks is a small structural form: a printed three-column header,
// two handwritten data rows, and one explicit key-value pair above the table.
func surveyFormBlocks() []types.Block {
	blocks := []types.Block{
		printedWord("h1", "Species", 0.12, 0.30),
		printedWord("h2", "Count", 0.42, 0.30),
		printedWord("h3", "Notes", 0.72, 0.30),
		handwrittenWord("d11", "Oak", 0.12, 0.40),
		handwrittenWord("d12", "4", 0.42, 0.40),
		handwrittenWord("d13", "windy", 0.72, 0.40),
		handwrittenWord("d21", "Birch", 0.12, 0.50),
		handwrittenWord("d22", "7", 0.42, 0.50),

		cellBlock("c11", 1, 1, 1, 99, 0.1, 0.29, 0.28, 0.05, "h1"),
		cellBlock("c12", 1, 2, 1, 99, 0.4, 0.29, 0.28, 0.05, "h2"),
		cellBlock("c13", 1, 3, 1, 99, 0.7, 0.29, 0.28, 0.05, "h3"),
		cellBlock("c21", 2, 1, 1, 55, 0.1, 0.39, 0.28, 0.05, "d11"),
		cellBlock("c22", 2, 2, 1, 99, 0.4, 0.39, 0.28, 0.05, "d12"),
		cellBlock("c23", 2, 3, 1, 99, 0.7, 0.39, 0.28, 0.05, "d13"),
		cellBlock("c31", 3, 1, 1, 99, 0.1, 0.49, 0.28, 0.05, "d21"),
		cellBlock("c32", 3, 2, 1, 99, 0.4, 0.49, 0.28, 0.05, "d22"),
		cellBlock("c33", 3, 3, 1, 99, 0.7, 0.49, 0.28, 0.05),

		printedWord("kw1", "Observer:", 0.1, 0.10),
		handwrittenWord("vw1", "Jane", 0.25, 0.10),
		handwrittenWord("vw2", "Doe", 0.32, 0.10),
	}
	return append(blocks, keyValuePair("k1", "v1", 0.10, []string{"kw1"}, []string{"vw1", "vw2"})...)
}

func TestProcessStructuralForm(t *testing.T) {
	out, err := Process(surveyFormBlocks(), DefaultConfig())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(out.HeaderMap) != 3 {
		t.Fatalf("header map has %d keys, want 3", len(out.HeaderMap))
	}
	for _, key := range []string{"species", "count", "notes"} {
		if _, ok := out.HeaderMap[key]; !ok {
			t.Errorf("header map missing key %q", key)
		}
	}
	if entry := out.HeaderMap["count"]; entry.System.ColumnIndex != 2 {
		t.Errorf("count column index = %d, want 2", entry.System.ColumnIndex)
	}

	if len(out.Rows) != 2 {
		t.Fatalf("got %d data rows, want 2", len(out.Rows))
	}
	first := out.Rows[0]
	if first.Values["species"] != "Oak" || first.Values["count"] != "4" || first.Values["notes"] != "windy" {
		t.Errorf("first row values = %v", first.Values)
	}
	if first.System.GroupID != "row_2" {
		t.Errorf("first row group id = %q, want %q", first.System.GroupID, "row_2")
	}
	if out.Rows[1].Values["species"] != "Birch" {
		t.Errorf("second row species = %q, want Birch", out.Rows[1].Values["species"])
	}

	cell, ok := first.System.Cells["row_2_col_1"]
	if !ok {
		t.Fatalf("first row missing cell provenance for col 1: %v", first.System.Cells)
	}
	if !cell.Doubt {
		t.Errorf("low-confidence cell not flagged as doubt (confidence %.0f)", cell.Confidence)
	}
	if countCell := first.System.Cells["row_2_col_2"]; countCell.Doubt {
		t.Errorf("high-confidence cell wrongly flagged as doubt")
	}

	observer, ok := out.UniversalFields["observer"]
	if !ok {
		t.Fatalf("universal fields missing observer: %v", out.UniversalFields)
	}
	if observer.Value != "Jane Doe" {
		t.Errorf("observer value = %q, want %q", observer.Value, "Jane Doe")
	}
	if observer.System.GroupID != "universal_observer" {
		t.Errorf("observer group id = %q, want %q", observer.System.GroupID, "universal_observer")
	}

	if len(out.TitleLegend) != 0 {
		t.Errorf("structural run produced a title legend: %v", out.TitleLegend)
	}
}

// streamSurveyWords is a cell-less graph: title, a key-value line, a printed
// header line, and two handwritten data lines. Only the geometric strategy
// can structure it.
func streamSurveyWords() []types.Block {
	return []types.Block{
		printedWord("t1", "Stream", 0.10, 0.02),
		printedWord("t2", "Survey", 0.20, 0.02),
		printedWord("u1", "Date:", 0.10, 0.08),
		handwrittenWord("u2", "2024-05-01", 0.20, 0.08),
		wordBlock("h1", "Site", types.TextTypePrinted, 0.26, 0.15, 0.08, 0.02),
		wordBlock("h2", "Depth", types.TextTypePrinted, 0.46, 0.15, 0.08, 0.02),
		wordBlock("d11", "A1", types.TextTypeHandwriting, 0.28, 0.22, 0.04, 0.02),
		wordBlock("d12", "0.4", types.TextTypeHandwriting, 0.48, 0.22, 0.04, 0.02),
		wordBlock("d21", "B2", types.TextTypeHandwriting, 0.28, 0.29, 0.04, 0.02),
		wordBlock("d22", "0.7", types.TextTypeHandwriting, 0.48, 0.29, 0.04, 0.02),
	}
}

func TestProcessGeometricFallback(t *testing.T) {
	out, err := Process(streamSurveyWords(), DefaultConfig())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(out.TitleLegend) != 1 || out.TitleLegend[0] != "Stream Survey" {
		t.Errorf("title legend = %v, want [Stream Survey]", out.TitleLegend)
	}

	date, ok := out.UniversalFields["date"]
	if !ok {
		t.Fatalf("universal fields missing date: %v", out.UniversalFields)
	}
	if date.Value != "2024-05-01" {
		t.Errorf("date value = %q, want %q", date.Value, "2024-05-01")
	}

	for _, key := range []string{"site", "depth"} {
		if _, ok := out.HeaderMap[key]; !ok {
			t.Errorf("header map missing key %q", key)
		}
	}

	if len(out.Rows) != 2 {
		t.Fatalf("got %d data rows, want 2", len(out.Rows))
	}
	if got := out.Rows[0].Values["site"]; got != "A1" {
		t.Errorf("first row site = %q, want A1", got)
	}
	if got := out.Rows[0].Values["depth"]; got != "0.4" {
		t.Errorf("first row depth = %q, want 0.4", got)
	}
	if got := out.Rows[1].Values["depth"]; got != "0.7" {
		t.Errorf("second row depth = %q, want 0.7", got)
	}
}

func TestProcessRejectsUnstructuredGraph(t *testing.T) {
	// Handwriting everywhere means no header zone ever opens, so every
	// processor declines and no partial output leaks.
	blocks := []types.Block{
		handwrittenWord("w1", "scrawl", 0.1, 0.1),
		handwrittenWord("w2", "more", 0.1, 0.2),
	}
	out, err := Process(blocks, DefaultConfig())
	if out != nil {
		t.Fatalf("expected nil output, got %+v", out)
	}
	if err == nil || !strings.Contains(err.Error(), "form not recognized") {
		t.Fatalf("expected form-not-recognized error, got %v", err)
	}
}

func TestProcessorNames(t *testing.T) {
	processors := DefaultProcessors(DefaultConfig())
	if len(processors) != 2 {
		t.Fatalf("got %d processors, want 2", len(processors))
	}
	if processors[0].Name() != "handwritten-table/structural" {
		t.Errorf("first processor name = %q", processors[0].Name())
	}
	if processors[1].Name() != "handwritten-table/geometric" {
		t.Errorf("second processor name = %q", processors[1].Name())
	}
}

func TestStructuredRowJSONRoundTrip(t *testing.T) {
	out, err := Process(surveyFormBlocks(), DefaultConfig())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	data, err := json.Marshal(out.Rows[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("unmarshal into map: %v", err)
	}
	if _, ok := flat["species"]; !ok {
		t.Errorf("serialized row missing flattened value key: %s", data)
	}
	if _, ok := flat["system"]; !ok {
		t.Errorf("serialized row missing system object: %s", data)
	}

	var restored StructuredRow
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if restored.Values["species"] != out.Rows[0].Values["species"] {
		t.Errorf("restored species = %q, want %q", restored.Values["species"], out.Rows[0].Values["species"])
	}
	if restored.System.GroupID != out.Rows[0].System.GroupID {
		t.Errorf("restored group id = %q, want %q", restored.System.GroupID, out.Rows[0].System.GroupID)
	}
}
