// Package formstruct reconstructs the logical shape of a scanned tabular
// form from the block graph emitted by a document-layout/OCR service.
//
// The input is a flat list of typed geometric blocks (words, lines, table
// cells, merged cells, key-value pairs) with page-normalized bounding boxes
// and parent/child relationships, consumed directly as Amazon Textract block
// types. The engine rebuilds the form's logical structure without any ground
// truth beyond spatial layout: a title/legend, a set of scalar "universal"
// fields, a canonical column-header schema, and a list of data rows keyed by
// that schema, each cell carrying provenance (bounding box, OCR confidence,
// doubt flag).
//
// Processing stages:
//
//   - BlockIndex: indexes the graph by id and type, resolves text through
//     child relationships with cycle protection
//   - BuildRows: reconstructs ordered rows, structurally (cell RowIndex) or
//     geometrically (vertical clustering of word centers)
//   - ClassifyZones: labels each row's text composition, then its structural
//     zone (data, header, universal fields, title/legend) in one backward pass
//   - ExtractUniversalFields: resolves scalar key/value pairs from universal
//     rows and from explicit key-value relationships
//   - BuildHeaderMap: builds the column schema from header cells, merged-cell
//     spans, and floating caption lines
//   - AssembleOutput: joins everything into the final StructuredOutput
//
// The whole pipeline is a pure function of the input graph plus the Config
// thresholds: no I/O, no network, no state across invocations. Distinct
// forms may be processed in parallel by the caller with no synchronization.
//
// A saved Google Document AI response can be adapted into the same block
// graph with BlocksFromDocAI, so both services feed one engine.
package formstruct

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// Processor attempts to structure one form. It either produces a
// StructuredOutput or declines with a typed error (NoContentError,
// NoRowsError, UnknownFormError); the first processor in an ordered list
// that succeeds claims the form.
type Processor interface {
	Name() string
	Preprocess(blocks []types.Block) (*StructuredOutput, error)
}

// HandwrittenTableProcessor recognizes forms with printed table headers and
// handwritten data rows, the common layout of field survey sheets.
type HandwrittenTableProcessor struct {
	Strategy RowStrategy
	Config   Config
}

// Name identifies the processor and its row strategy.
func (p *HandwrittenTableProcessor) Name() string {
	return fmt.Sprintf("handwritten-table/%s", p.Strategy)
}

// Preprocess runs the full pipeline over the block graph.
func (p *HandwrittenTableProcessor) Preprocess(blocks []types.Block) (*StructuredOutput, error) {
	ix := NewBlockIndex(blocks)

	rows, err := BuildRows(ix, p.Strategy, p.Config)
	if err != nil {
		return nil, err
	}

	ClassifyZones(rows, p.Config)

	headers := BuildHeaderMap(ix, rows, p.Config)
	pairs := ExtractUniversalFields(ix, rows)

	return AssembleOutput(rows, headers, pairs, p.Config)
}

// DefaultProcessors returns the ordered strategy list: structural row
// extraction first, geometric clustering as the fallback for graphs without
// table cells.
func DefaultProcessors(cfg Config) []Processor {
	return []Processor{
		&HandwrittenTableProcessor{Strategy: StrategyStructural, Config: cfg},
		&HandwrittenTableProcessor{Strategy: StrategyGeometric, Config: cfg},
	}
}

// Process runs the default processor list over the block graph and returns
// the first successful result. When every processor declines, the last
// decline is returned wrapped; unexpected errors abort immediately. No
// partial output is ever returned on failure.
func Process(blocks []types.Block, cfg Config) (*StructuredOutput, error) {
	var lastDecline error
	for _, processor := range DefaultProcessors(cfg) {
		out, err := processor.Preprocess(blocks)
		if err == nil {
			return out, nil
		}
		if !isDecline(err) {
			return nil, err
		}
		lastDecline = err
	}
	return nil, fmt.Errorf("form not recognized: %w", lastDecline)
}
