package formstruct

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// Composition labels a row by the origin of its text.
type Composition string

const (
	CompositionEmpty           Composition = "EMPTY"
	CompositionPrintedOnly     Composition = "PRINTED_ONLY"
	CompositionHandwritingOnly Composition = "HANDWRITING_ONLY"
	CompositionMixed           Composition = "MIXED"
)

// Zone labels a row by its structural role on the form.
type Zone string

const (
	ZoneData        Zone = "DATA"
	ZoneHeader      Zone = "HEADER"
	ZoneUniversal   Zone = "UNIVERSAL"
	ZoneTitleLegend Zone = "TITLE_LEGEND"
	ZoneEmpty       Zone = "EMPTY"
)

// composition classifies a row by the text types of its non-blank words.
func composition(row Row) Composition {
	printed, handwritten := 0, 0
	for _, w := range row.Words {
		if w.Text == "" {
			continue
		}
		if w.TextType == types.TextTypeHandwriting {
			handwritten++
		} else {
			printed++
		}
	}
	switch {
	case printed == 0 && handwritten == 0:
		return CompositionEmpty
	case printed == 0:
		return CompositionHandwritingOnly
	case handwritten == 0:
		return CompositionPrintedOnly
	default:
		return CompositionMixed
	}
}

// printedMajority reports whether printed words outnumber handwritten ones
// by more than the configured bias. Exact ties fall through to false.
func printedMajority(row Row, bias int) bool {
	printed, handwritten := 0, 0
	for _, w := range row.Words {
		if w.Text == "" {
			continue
		}
		if w.TextType == types.TextTypeHandwriting {
			handwritten++
		} else {
			printed++
		}
	}
	return printed > handwritten+bias
}

// ClassifyZones assigns each row a composition label and a zone label.
//
// Zones are segmented in a single backward pass, bottom row first. Forms are
// laid out top-down as legend, universal fields (printed label plus
// handwritten value), printed table header, handwritten table data, so the
// scan starts in the data zone and advances on the first contrary evidence:
// a printed (or printed-majority mixed) row ends the data zone, a mixed row
// carrying a ':' or '-' separator ends the header zone, and a printed row
// after the universal fields starts the title/legend. The state is local to
// this one call; the pass is pure and never fails. Absence of a header or
// data zone is surfaced later by the assembler.
func ClassifyZones(rows []Row, cfg Config) {
	state := ZoneData
	for i := len(rows) - 1; i >= 0; i-- {
		rows[i].Composition = composition(rows[i])
		comp := rows[i].Composition

		switch state {
		case ZoneData:
			switch {
			case comp == CompositionHandwritingOnly:
				rows[i].Zone = ZoneData
			case comp == CompositionPrintedOnly:
				rows[i].Zone = ZoneHeader
				state = ZoneHeader
			case comp == CompositionMixed && printedMajority(rows[i], cfg.HeaderMixedBias):
				rows[i].Zone = ZoneHeader
				state = ZoneHeader
			case comp == CompositionMixed:
				rows[i].Zone = ZoneData
			default:
				rows[i].Zone = ZoneEmpty
			}

		case ZoneHeader:
			switch {
			case comp == CompositionMixed && hasSeparator(rows[i].Text()):
				rows[i].Zone = ZoneUniversal
				state = ZoneUniversal
			default:
				rows[i].Zone = ZoneHeader
			}

		case ZoneUniversal:
			switch comp {
			case CompositionPrintedOnly:
				rows[i].Zone = ZoneTitleLegend
				state = ZoneTitleLegend
			default:
				rows[i].Zone = ZoneUniversal
			}

		default: // title/legend absorbs everything above it
			rows[i].Zone = ZoneTitleLegend
		}
	}
}

func hasSeparator(text string) bool {
	return strings.ContainsAny(text, ":-")
}
