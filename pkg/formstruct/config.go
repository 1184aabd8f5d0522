package formstruct

// Config holds the tunable thresholds for form structuring.
// The zero value is not usable; start from DefaultConfig.
type Config struct {
	// RowGapThreshold is the maximum vertical distance (in normalized page
	// fractions) between a word's center and the running row centroid for
	// the word to join the row during geometric row extraction.
	RowGapThreshold float64 `yaml:"row_gap_threshold"`

	// ConfidenceThreshold is the OCR confidence below which a cell is
	// flagged as doubtful.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	// SpanPaddingRatio widens a floating parent line's horizontal span by
	// this fraction of the average leaf header cell width on each side.
	SpanPaddingRatio float64 `yaml:"span_padding_ratio"`

	// SpanPaddingFloor is the minimum horizontal padding applied around a
	// floating parent line, in normalized page fractions.
	SpanPaddingFloor float64 `yaml:"span_padding_floor"`

	// ParentBandRows is how many leaf-row heights above the leaf header row
	// a free-standing line may sit and still be considered a parent caption.
	ParentBandRows float64 `yaml:"parent_band_rows"`

	// ParentMinConfidence is the minimum OCR confidence for a line to be
	// considered as a floating parent caption.
	ParentMinConfidence float64 `yaml:"parent_min_confidence"`

	// HeaderMixedBias shifts the MIXED-row tie-break during zone
	// classification: a mixed row becomes the first header row only when
	// printed words outnumber handwritten ones by more than this margin.
	// Exact ties always fall through to the data zone.
	HeaderMixedBias int `yaml:"header_mixed_bias"`
}

// DefaultConfig returns a config with the tried defaults for scanned
// field forms.
func DefaultConfig() Config {
	return Config{
		RowGapThreshold:     0.015,
		ConfidenceThreshold: 80.0,
		SpanPaddingRatio:    0.6,
		SpanPaddingFloor:    0.015,
		ParentBandRows:      2.0,
		ParentMinConfidence: 90.0,
		HeaderMixedBias:     0,
	}
}
