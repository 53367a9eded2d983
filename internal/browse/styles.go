package browse

import "github.com/charmbracelet/lipgloss"

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette, true-color hex values
// https://catppuccin.com/palette
// ---------------------------------------------------------------------------

const (
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorBase     lipgloss.Color = "#1e1e2e"
)

// Semantic aliases
const (
	colorAccent = colorMauve
	colorFocus  = colorLavender
	colorError  = colorRed
	colorOK     = colorGreen
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorBase).
			Background(colorAccent).
			Bold(true).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Foreground(colorSubtext0)

	cursorRowStyle = lipgloss.NewStyle().
			Foreground(colorBase).
			Background(colorFocus).
			Bold(true)

	rowStyle = lipgloss.NewStyle().Foreground(colorText)

	labelStyle = lipgloss.NewStyle().Foreground(colorTeal).Bold(true)

	focusedFieldStyle = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)

	fieldStyle = lipgloss.NewStyle().Foreground(colorText)

	statusOKStyle  = lipgloss.NewStyle().Foreground(colorOK)
	statusErrStyle = lipgloss.NewStyle().Foreground(colorError)

	helpStyle = lipgloss.NewStyle().Foreground(colorOverlay0)

	countStyle = lipgloss.NewStyle().Foreground(colorPeach)
)
