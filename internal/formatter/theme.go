package formatter

import "strings"

// DefaultTheme is used for unknown theme names
const DefaultTheme = "Common Gray"

// Theme is the palette and node shape of a diagram
type Theme struct {
	Name          string
	Border        string // node border color
	Header        string // table name cell background
	Fill          string // node fill, solid or "color1:color2" gradient
	CollapsedFill string // node fill when only table names are shown
	Text          string // table name color
	Item          string // column row color
	EdgeColor     string
	EdgeWidth     string
	Shape         string // Mrecord (rounded) or record (square)
}

var themes = []Theme{
	{
		Name:          "Common Gray",
		Border:        "#6c6c6c",
		Header:        "#e0e0e0",
		Fill:          "#f5f5f5",
		CollapsedFill: "#e0e0e0",
	},
	{
		Name:          "Common Gray Box",
		Border:        "#6c6c6c",
		Header:        "#e0e0e0",
		Fill:          "#f5f5f5",
		CollapsedFill: "#e0e0e0",
	},
	{
		Name:          "Blue Navy",
		Border:        "#1a5282",
		Header:        "#1a5282",
		Fill:          "#ffffff",
		CollapsedFill: "#1a5282",
		Text:          "#ffffff",
		EdgeColor:     "#0078d7",
		EdgeWidth:     "2",
	},
	{
		Name:          "Gradient Green",
		Border:        "#716f64",
		Header:        "transparent",
		Fill:          "#008080:#ffffff",
		CollapsedFill: "#008080:#ffffff",
	},
	{
		Name:          "Blue Sky",
		Border:        "#716f64",
		Header:        "transparent",
		Fill:          "#d3dcef:#ffffff",
		CollapsedFill: "#d3dcef:#ffffff",
	},
}

// ThemeNames returns the supported theme names
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for _, t := range themes {
		names = append(names, t.Name)
	}
	return names
}

// IsTheme reports whether name is a supported theme
func IsTheme(name string) bool {
	for _, t := range themes {
		if t.Name == name {
			return true
		}
	}
	return false
}

// ThemeByName returns the named theme, or the default theme for unknown names
func ThemeByName(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t.withDefaults()
		}
	}
	return themes[0].withDefaults()
}

func (t Theme) withDefaults() Theme {
	if t.Text == "" {
		t.Text = "#000000"
	}
	if t.Item == "" {
		t.Item = "#000000"
	}
	if t.EdgeColor == "" {
		t.EdgeColor = "#696969"
	}
	if t.EdgeWidth == "" {
		t.EdgeWidth = "1"
	}
	t.Shape = "Mrecord"
	if strings.Contains(t.Name, " Box") {
		t.Shape = "record"
	}
	return t
}
