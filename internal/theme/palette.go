package theme

// Palette is the fixed chart styling for one theme.
type Palette struct {
	TextColor string
	GridColor string
}

var (
	lightPalette = Palette{TextColor: "#1D1D1F", GridColor: "rgba(0, 0, 0, 0.1)"}
	darkPalette  = Palette{TextColor: "#F5F5F7", GridColor: "rgba(255, 255, 255, 0.1)"}
)

// PaletteFor returns the chart preset for the theme.
func PaletteFor(theme Theme) Palette {
	if theme == Dark {
		return darkPalette
	}
	return lightPalette
}
