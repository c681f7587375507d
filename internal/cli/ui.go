package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Palette. ANSI 256 codes so the TUI and plain output agree.
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorPink   = lipgloss.Color("176")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorCyan)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleError   = lipgloss.NewStyle().Foreground(colorRed)
	styleMuted   = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

// categoryColors matches the node categories of the registry. Live scripts
// show up as "script".
var categoryColors = map[string]lipgloss.Color{
	"layout":   colorBlue,
	"modifier": colorYellow,
	"effect":   colorGreen,
	"driver":   colorPink,
	"script":   colorGray,
}

// styleCategory renders a node category in its color.
func styleCategory(category string) string {
	c, ok := categoryColors[category]
	if !ok {
		c = colorGray
	}
	return lipgloss.NewStyle().Foreground(c).Render(category)
}

// statusOut receives status lines. It is stderr so that stdout stays clean
// for JSON, DOT and SVG output.
var statusOut io.Writer = os.Stderr

func status(icon string, style lipgloss.Style, msg string) {
	fmt.Fprintln(statusOut, style.Render(icon)+" "+msg)
}

func printSuccess(format string, args ...any) {
	status("✓", StyleSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	status("✗", styleError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	status("!", StyleWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	status("›", styleMuted, fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path of a written file.
func printFile(path string) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Fprintln(statusOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}
