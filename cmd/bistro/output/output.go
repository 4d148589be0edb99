package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Color styles for terminal output
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	headerStyle  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

var out io.Writer = os.Stdout

// SetWriter redirects all output, returning the previous writer.
func SetWriter(w io.Writer) io.Writer {
	prev := out
	out = w
	return prev
}

// Success prints a success message
func Success(format string, args ...any) {
	fmt.Fprint(out, successStyle.Render("✓ "))
	fmt.Fprintf(out, format+"\n", args...)
}

// Warning prints a warning message
func Warning(format string, args ...any) {
	fmt.Fprint(out, warningStyle.Render("⚠ "))
	fmt.Fprintf(out, format+"\n", args...)
}

// Error prints an error message
func Error(format string, args ...any) {
	fmt.Fprint(out, errorStyle.Render("✗ "))
	fmt.Fprintf(out, format+"\n", args...)
}

// Info prints an info message
func Info(format string, args ...any) {
	fmt.Fprint(out, infoStyle.Render("ℹ "))
	fmt.Fprintf(out, format+"\n", args...)
}

// Muted prints a muted message
func Muted(format string, args ...any) {
	fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Primary prints a primary message
func Primary(format string, args ...any) {
	fmt.Fprintln(out, primaryStyle.Render(fmt.Sprintf(format, args...)))
}

// Section prints a section header
func Section(title string) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, primaryStyle.Render(title))
	fmt.Fprintln(out, mutedStyle.Render(strings.Repeat("═", len([]rune(title)))))
	fmt.Fprintln(out)
}

// StatusIcon returns a colored status icon
func StatusIcon(status string) string {
	switch status {
	case "admin", "ok":
		return successStyle.Render("✓")
	case "user", "pending":
		return warningStyle.Render("○")
	case "expired", "failed":
		return errorStyle.Render("✗")
	case "loading":
		return infoStyle.Render("◉")
	default:
		return mutedStyle.Render("•")
	}
}

// JSON prints v as indented JSON.
func JSON(v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// columnGap separates table columns.
const columnGap = 2

// Table prints rows under a styled header, aligned in columns. Cells are
// measured with lipgloss.Width, so styled text does not shift columns.
func Table(header []string, rows [][]string) {
	if len(rows) == 0 {
		Muted("No records")
		return
	}

	widths := columnWidths(append([][]string{header}, rows...))
	fmt.Fprintln(out, alignRow(header, widths, headerStyle.Render))
	for _, row := range rows {
		fmt.Fprintln(out, alignRow(row, widths, nil))
	}
}

// KeyValue prints aligned "key: value" lines.
func KeyValue(pairs [][2]string) {
	keys := make([][]string, len(pairs))
	for i, p := range pairs {
		keys[i] = []string{p[0] + ":"}
	}
	widths := columnWidths(keys)
	for _, p := range pairs {
		fmt.Fprintln(out, alignRow([]string{p[0] + ":", p[1]}, widths, mutedStyle.Render, nil))
	}
}

func columnWidths(rows [][]string) []int {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i == len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	return widths
}

// alignRow pads every cell but the last to its column width. render[i],
// when present and non-nil, styles cell i; padding is measured on the
// unstyled text. A single render applies to every cell.
func alignRow(cells []string, widths []int, render ...func(...string) string) string {
	var b strings.Builder
	for i, cell := range cells {
		text := cell
		if style := renderFor(render, i); style != nil {
			text = style(cell)
		}
		b.WriteString(text)
		if i < len(cells)-1 && i < len(widths) {
			b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+columnGap))
		}
	}
	return b.String()
}

func renderFor(render []func(...string) string, i int) func(...string) string {
	switch {
	case len(render) == 1:
		return render[0]
	case i < len(render):
		return render[i]
	default:
		return nil
	}
}
