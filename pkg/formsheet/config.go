package formsheet

// SheetConfig holds user options for rendering the datasheet PDF
type SheetConfig struct {
	Margin     float64 // Page margin in points
	RowHeight  float64 // Height of one table row in points
	TitleGap   float64 // Vertical gap after the title block
	MaxColumns int     // Columns beyond this are dropped from the sheet (0 = no limit)
	ShadeDoubt bool    // Tint cells whose confidence fell below the threshold
	Font       FontConfig
	TitleFont  FontConfig
	HeaderFont FontConfig
}

// DefaultSheetConfig returns a config with sensible defaults
func DefaultSheetConfig() SheetConfig {
	return SheetConfig{
		Margin:     36,
		RowHeight:  16,
		TitleGap:   8,
		MaxColumns: 0,
		ShadeDoubt: true,
		Font:       DefaultFont,
		TitleFont:  FontConfig{Name: "Helvetica", Style: "B", Size: 14},
		HeaderFont: FontConfig{Name: "Helvetica", Style: "B", Size: 9},
	}
}

// FontConfig contains font settings for datasheet text
type FontConfig struct {
	Name  string  // Font name (e.g., "Helvetica")
	Style string  // Font style ("", "B", "I", "BI")
	Size  float64 // Font size in points
}

// DefaultFont is the body font, Helvetica renders reliably across viewers
var DefaultFont = FontConfig{
	Name:  "Helvetica",
	Style: "",
	Size:  9,
}
