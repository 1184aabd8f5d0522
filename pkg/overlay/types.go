// Package overlay turns a structured form record into the overlay boxes a
// renderer draws onto the source scan, and into a self-contained HTML debug
// report. The report embeds every box as data attributes, so ParseReport can
// recover the boxes from the HTML alone.
package overlay

import "github.com/quadrat/formscribe/pkg/formstruct"

// Box is one labeled rectangle for the overlay renderer. Coordinates are
// page-normalized fractions, matching the source block graph.
type Box struct {
	GroupID    string          `json:"group_id"`
	Key        string          `json:"key"`
	Value      string          `json:"value"`
	BBox       formstruct.BBox `json:"bbox"`
	Confidence float64         `json:"confidence"`
	Doubt      bool            `json:"doubt"`
}
