package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/relink/pkg/observability"
	"github.com/matzehuels/relink/pkg/rebuild"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconSkip    = "·"
)

// =============================================================================
// Status Output
// =============================================================================

// printer writes styled status lines.
type printer struct {
	w io.Writer
}

func (p printer) success(format string, args ...any) {
	fmt.Fprintln(p.w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func (p printer) error(format string, args ...any) {
	fmt.Fprintln(p.w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func (p printer) warning(format string, args ...any) {
	fmt.Fprintln(p.w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func (p printer) info(format string, args ...any) {
	fmt.Fprintln(p.w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// detail prints an indented, dimmed line.
func (p printer) detail(format string, args ...any) {
	fmt.Fprintln(p.w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func (p printer) keyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(16)
	fmt.Fprintln(p.w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

func (p printer) line(s string) {
	fmt.Fprintln(p.w, s)
}

// =============================================================================
// Rebuild Output
// =============================================================================

// outcome prints the final state of one package.
func (p printer) outcome(o rebuild.Outcome, dryRun bool) {
	switch o.State {
	case rebuild.StateInstalled:
		p.success("%s rebuilt", o.Package)
	case rebuild.StateFailed:
		p.error("%s failed: %s", o.Package, o.Error)
	case rebuild.StateNeedsRebuild:
		if dryRun {
			p.warning("%s needs to be reinstalled", o.Package)
		}
	case rebuild.StateMissing:
		p.warning("%s was not found", o.Package)
	case rebuild.StateSkippedByUser:
		p.detail("%s %s skipped", iconSkip, o.Package)
	case rebuild.StateIgnored:
		p.detail("%s %s ignored", iconSkip, o.Package)
	}
}

// summary prints a table with one row per non-empty state and the run
// statistics.
func (p printer) summary(r *rebuild.Report, stats observability.Stats) {
	states := []rebuild.State{
		rebuild.StateInstalled, rebuild.StateNeedsRebuild, rebuild.StateFailed,
		rebuild.StateSkipped, rebuild.StateSkippedByUser, rebuild.StateMissing,
		rebuild.StateIgnored, rebuild.StatePending,
	}
	var rows [][]string
	for _, s := range states {
		if n := r.Count(s); n > 0 {
			rows = append(rows, []string{string(s), strconv.Itoa(n)})
		}
	}
	rows = append(rows,
		[]string{"files inspected", strconv.Itoa(stats.Inspections)},
		[]string{"duration", r.Duration.Round(time.Millisecond).String()},
	)

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Packages", "Count").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 {
				return cellStyle.Foreground(colorCyan)
			}
			return cellStyle
		})

	fmt.Fprintln(p.w, t.Render())
	if stats.Anomalies > 0 {
		p.warning("%d lines of inspection output were not understood and were ignored", stats.Anomalies)
	}
}
