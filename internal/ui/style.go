// Package ui holds terminal styling shared by the CLI and the reporter.
package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/joshharrison/gantry/internal/health"
	"github.com/joshharrison/gantry/internal/stage"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	Blue        = color.New(color.FgHiBlue).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// PrintLogo renders the gantry banner.
func PrintLogo(w io.Writer) {
	frame := color.New(color.FgCyan)
	bars := color.New(color.FgYellow)
	brand := color.New(color.Bold, color.FgMagenta)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +--------------------------+")
	bars.Fprintln(w, "   |  ======                  |")
	bars.Fprintln(w, "   |     =========            |")
	brand.Fprintln(w, "   |     G  A  N  T  R  Y     |")
	bars.Fprintln(w, "   |            ========      |")
	bars.Fprintln(w, "   |                 ======== |")
	frame.Fprintln(w, "   +--------------------------+")
	tag.Fprintf(w, "   %s Schedule health analytics\n", Dim("📐"))
	fmt.Fprintln(w)
}

// moduleColors is a palette of distinct bold colors for telling modules apart.
var moduleColors = []func(a ...interface{}) string{
	BoldMagenta,
	BoldCyan,
	BoldYellow,
	BoldGreen,
	color.New(color.Bold, color.FgHiBlue).SprintFunc(),
	color.New(color.Bold, color.FgHiRed).SprintFunc(),
}

// moduleColorIndex hashes a module name to a palette index.
func moduleColorIndex(name string) int {
	var h uint32
	for _, c := range name {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(moduleColors)))
}

// ModuleLabel returns a colored [module] tag. The same module always gets the
// same color.
func ModuleLabel(name string) string {
	c := moduleColors[moduleColorIndex(name)]
	return Dim("[") + c(name) + Dim("]")
}

// HealthIcon returns a colored icon for a health status.
func HealthIcon(s health.Status) string {
	switch s {
	case health.Completed:
		return Dim("✓")
	case health.OnTrack:
		return Green("●")
	case health.AtRisk:
		return Yellow("▲")
	case health.Delayed:
		return Red("✗")
	default:
		return Dim("◌")
	}
}

// HealthStatus returns a colored health label.
func HealthStatus(s health.Status) string {
	switch s {
	case health.Completed:
		return Dim(s.String())
	case health.OnTrack:
		return Green(s.String())
	case health.AtRisk:
		return Yellow(s.String())
	case health.Delayed:
		return BoldRed(s.String())
	default:
		return s.String()
	}
}

// StageLabel returns a colored funnel stage label.
func StageLabel(s stage.Stage) string {
	switch s {
	case stage.Completed:
		return Green(s.String())
	case stage.InProgress:
		return Cyan(s.String())
	case stage.Blocked:
		return BoldRed(s.String())
	default:
		return Dim(s.String())
	}
}
