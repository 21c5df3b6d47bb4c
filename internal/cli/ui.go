package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - labels
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

var (
	// StyleTitle for headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for counts.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(warningLine(format, args...))
}

func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printCounts(counts ...count) {
	if line := countsLine(counts...); line != "" {
		fmt.Println(line)
	}
}

func warningLine(format string, args ...any) string {
	return styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...))
}

func infoLine(format string, args ...any) string {
	return styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...)
}

// detailLine renders an indented muted line.
func detailLine(format string, args ...any) string {
	return "  " + StyleDim.Render(fmt.Sprintf(format, args...))
}

func keyValueLine(key, value string) string {
	return styleKey.Render(key) + " " + StyleValue.Render(value)
}

// countsLine renders non-zero counts on one line, e.g. "12 contours · 3 rejected".
// It returns "" when every count is zero.
func countsLine(counts ...count) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		if c.n > 0 {
			parts = append(parts, StyleNumber.Render(fmt.Sprint(c.n))+StyleDim.Render(" "+c.label))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

type count struct {
	n     int
	label string
}
