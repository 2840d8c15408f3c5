package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/foldlab/foldpipe/internal/models"
)

// Palette is the colour set used by terminal output for one theme.
type Palette struct {
	Foreground string
	Dim        string
	Accent     string
	Border     string
	OK         string
	Warn       string
	Error      string
}

var palettes = map[models.Theme]Palette{
	models.ThemeLight: {
		Foreground: "#24292f",
		Dim:        "#6e7781",
		Accent:     "#0969da",
		Border:     "#d0d7de",
		OK:         "#1a7f37",
		Warn:       "#9a6700",
		Error:      "#cf222e",
	},
	models.ThemeDark: {
		Foreground: "#c0caf5",
		Dim:        "#565f89",
		Accent:     "#7aa2f7",
		Border:     "#3b4261",
		OK:         "#9ece6a",
		Warn:       "#e0af68",
		Error:      "#f7768e",
	},
}

// PaletteFor returns the palette of theme, light for unknown values.
func PaletteFor(theme models.Theme) Palette {
	if p, ok := palettes[theme]; ok {
		return p
	}
	return palettes[models.ThemeLight]
}

// Styles are the lipgloss styles derived from a palette.
type Styles struct {
	Title   lipgloss.Style
	Dim     lipgloss.Style
	OK      lipgloss.Style
	Warn    lipgloss.Style
	Error   lipgloss.Style
	Box     lipgloss.Style
	Focused lipgloss.Style
}

// StylesFor builds the styles of theme.
func StylesFor(theme models.Theme) Styles {
	p := PaletteFor(theme)
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Accent)),
		Dim:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Dim)),
		OK:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.OK)),
		Warn:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Warn)),
		Error: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Error)),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.Border)).
			Padding(0, 1),
		Focused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.Accent)).
			Padding(0, 1),
	}
}
