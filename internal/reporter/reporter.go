package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/joshharrison/gantry/internal/claude"
	"github.com/joshharrison/gantry/internal/delay"
	"github.com/joshharrison/gantry/internal/engine"
	"github.com/joshharrison/gantry/internal/gantt"
	"github.com/joshharrison/gantry/internal/health"
	"github.com/joshharrison/gantry/internal/stage"
	"github.com/joshharrison/gantry/internal/ui"
)

// NoDelayBucket is shown when no bucket carries any delay.
const NoDelayBucket = "No active delay bucket"

// DefaultGanttWidth is the number of columns used for the bar area.
const DefaultGanttWidth = 60

// Reporter renders an analytics report for the terminal.
type Reporter struct {
	Report  *engine.Report
	Project string
	Version string
}

// New creates a new Reporter.
func New(r *engine.Report, project, version string) *Reporter {
	return &Reporter{Report: r, Project: project, Version: version}
}

// Headline returns a one-line status suitable for logs and the trend table.
func (r *Reporter) Headline() string {
	k := r.Report.KPIs
	return fmt.Sprintf("%s v%s: %d%% complete, %d at risk, %.1f delay days",
		r.Project, r.Version, k.CompletionPct, k.RiskLoad, k.TotalDelayDays)
}

// PrintSummary writes the KPI dashboard to w. The output is also returned as
// a string so it can be reused as narrative context.
func (r *Reporter) PrintSummary(w io.Writer) string {
	var b strings.Builder
	mw := io.MultiWriter(w, &b)
	rep := r.Report
	k := rep.KPIs

	fmt.Fprintf(mw, "\n%s %s\n", "📐", ui.BoldCyan("Schedule Health Report"))
	fmt.Fprintf(mw, "%s\n", ui.Cyan("══════════════════════════"))
	fmt.Fprintf(mw, "Project:   %s %s\n", ui.Bold(r.Project), ui.Dim("v"+r.Version))
	fmt.Fprintf(mw, "Scope:     %s\n", scope(rep))
	fmt.Fprintf(mw, "As of:     %s\n", rep.Now)
	fmt.Fprintf(mw, "Baseline:  %s → %s (%d days)\n", rep.BaselineStart, rep.BaselineEnd, rep.TotalDays)
	fmt.Fprintf(mw, "Forecast:  %s\n\n", rep.ProjectEnd)

	fmt.Fprintf(mw, "%s\n", ui.BoldWhite("Key indicators"))
	fmt.Fprintf(mw, "  Completion         %s %s\n", ui.Bold(fmt.Sprintf("%d%%", k.CompletionPct)),
		ui.Dim(fmt.Sprintf("(%d of %d)", k.Completed, k.TotalActivities)))
	fmt.Fprintf(mw, "  On-time finishes   %s %s\n", ui.Bold(fmt.Sprintf("%d%%", k.OnTimeCompletionPct)),
		ui.Dim(fmt.Sprintf("(%d late)", k.LateCompleted)))
	fmt.Fprintf(mw, "  Risk load          %s %s\n", riskColor(k.RiskLoadPct)(fmt.Sprintf("%d%%", k.RiskLoadPct)),
		ui.Dim(fmt.Sprintf("(%d activities)", k.RiskLoad)))
	fmt.Fprintf(mw, "  Delay days         %s %s\n", ui.Bold(fmt.Sprintf("%.1f", k.TotalDelayDays)),
		ui.Dim(fmt.Sprintf("(avg %.1f over %d delayed)", k.AvgDelayPerDelayed, k.DelayedActivities)))
	fmt.Fprintf(mw, "  Top delay bucket   %s\n\n", topBucket(k.TopDelayBucket))

	fmt.Fprintf(mw, "%s\n", ui.BoldWhite("Health"))
	for _, s := range rep.Health.Donut {
		fmt.Fprintf(mw, "  %s %-10s %3d\n", ui.HealthIcon(s.Name), s.Name, s.Value)
	}
	fmt.Fprintf(mw, "  %s\n\n", ui.Dim(fmt.Sprintf("%d%% of active work on track, avg completed delay %.1f days",
		rep.Health.PctOnTrack, rep.Health.AvgCompletedDelay)))

	fmt.Fprintf(mw, "%s\n", ui.BoldWhite("Execution funnel"))
	for _, s := range stage.Stages {
		fmt.Fprintf(mw, "  %-22s %3d\n", ui.StageLabel(s), rep.Stages.Counts[s])
	}
	fmt.Fprintln(mw)

	r.printDelay(mw)
	r.printCost(mw)
	r.printResponsibility(mw)

	if cp := rep.CriticalPath; len(cp.Codes) > 0 {
		fmt.Fprintf(mw, "Critical:  %s %s\n",
			ui.BoldYellow("⚡ "+strings.Join(cp.Codes, " → ")),
			ui.Dim(fmt.Sprintf("(%d days, %d phases, %d links)", cp.TotalDays, cp.Phases, cp.Links)))
	}

	if len(rep.Warnings) > 0 {
		fmt.Fprintf(mw, "\n%s\n", ui.BoldYellow("Warnings:"))
		for _, warning := range rep.Warnings {
			fmt.Fprintf(mw, "  %s %s\n", ui.Yellow("!"), warning)
		}
	}

	return b.String()
}

func (r *Reporter) printDelay(w io.Writer) {
	d := r.Report.Delay
	fmt.Fprintf(w, "%s %s\n", ui.BoldWhite("Delay attribution"),
		ui.Dim(fmt.Sprintf("(%.1f days across %d activities)", d.Totals.DelayDays, d.Totals.Activities)))
	for _, bk := range d.Buckets {
		bar := strings.Repeat("■", barLength(bk.DelayDays, d.Totals.DelayDays, 20))
		fmt.Fprintf(w, "  %-28s %6.1f %s %s\n", bk.Name, bk.DelayDays, ui.Red(bar), ui.Dim(fmt.Sprintf("(%d)", bk.Count)))
	}
	fmt.Fprintln(w)
}

func (r *Reporter) printCost(w io.Writer) {
	c := r.Report.KPIs.Cost
	fmt.Fprintf(w, "%s\n", ui.BoldWhite("Cost"))
	if !c.HasCost {
		fmt.Fprintf(w, "  %s\n\n", ui.Dim("No cost data recorded"))
		return
	}
	variance := fmt.Sprintf("%+.2f (%+.1f%%)", c.Variance, c.VariancePct)
	if c.Variance > 0 {
		variance = ui.BoldRed(variance)
	} else {
		variance = ui.Green(variance)
	}
	fmt.Fprintf(w, "  Budgeted           %.2f\n", c.Budgeted)
	fmt.Fprintf(w, "  Actual + delay     %.2f\n", c.Forecast)
	fmt.Fprintf(w, "  Variance           %s\n", variance)
	if c.OverrunStart != "" {
		fmt.Fprintf(w, "  Overrun since      %s\n", ui.Red(c.OverrunStart))
	} else {
		fmt.Fprintf(w, "  Overrun since      %s\n", ui.Dim("within budget"))
	}
	fmt.Fprintln(w)
}

func (r *Reporter) printResponsibility(w io.Writer) {
	s := r.Report.Responsibility
	if len(s.Loads) == 0 {
		return
	}
	fmt.Fprintf(w, "%s\n", ui.BoldWhite("Responsibility (R / A / S / I)"))
	for _, l := range s.Loads {
		person := l.Person
		if len(person) > 24 {
			person = person[:21] + "..."
		}
		fmt.Fprintf(w, "  %-24s %2d %2d %2d %2d  %s\n", person, l.R, l.A, l.S, l.I, ui.Dim(fmt.Sprintf("= %d", l.Total)))
	}
	if len(s.Overloaded) > 0 {
		fmt.Fprintf(w, "  %s %s\n", ui.BoldRed(fmt.Sprintf("Overloaded (R ≥ %d):", s.Threshold)), strings.Join(s.Overloaded, ", "))
	}
	fmt.Fprintln(w)
}

// PrintGantt draws one bar per row. Planned spans are drawn with '-', actual
// spans with '=', and '#' where they overlap. width is the number of columns
// for the whole baseline window.
func (r *Reporter) PrintGantt(w io.Writer, width int) {
	rep := r.Report
	if width <= 0 {
		width = DefaultGanttWidth
	}
	days := rep.TotalDays
	if days < 1 {
		days = 1
	}
	if width > days {
		width = days
	}

	fmt.Fprintf(w, "%s %s\n", ui.BoldWhite("Gantt"), ui.Dim(fmt.Sprintf("%s → %s, %d days", rep.BaselineStart, rep.BaselineEnd, rep.TotalDays)))
	if len(rep.Rows) == 0 {
		fmt.Fprintf(w, "  %s\n", ui.Dim("No activities in scope"))
		return
	}

	module := ""
	for _, row := range rep.Rows {
		if row.Module != module {
			module = row.Module
			fmt.Fprintf(w, "  %s\n", ui.ModuleLabel(module))
		}
		critical := " "
		if row.Critical {
			critical = ui.BoldYellow("⚡")
		}
		fmt.Fprintf(w, "  %s %-24s %s |%s| %s\n",
			ui.HealthIcon(row.Status), truncate(label(row), 24), critical,
			colorBar(Bar(row, days, width), row.Status), ui.Dim(row.Status.String()))
	}
}

// Bar renders the planned and actual spans of a row onto width columns
// covering days baseline days.
func Bar(row gantt.Row, days, width int) string {
	cells := []byte(strings.Repeat(" ", width))
	paint := func(offset, dur int, mark byte) {
		if dur <= 0 {
			return
		}
		from := column(offset, days, width)
		to := column(offset+dur-1, days, width)
		for i := from; i <= to; i++ {
			switch {
			case cells[i] == ' ':
				cells[i] = mark
			case cells[i] != mark:
				cells[i] = '#'
			}
		}
	}
	paint(row.PlannedOffset, row.PlannedDuration, '-')
	paint(row.ActualOffset, row.ActualDuration, '=')
	return string(cells)
}

// column maps a day offset onto a column, clamped to the window.
func column(day, days, width int) int {
	if day < 0 {
		return 0
	}
	c := day * width / days
	if c >= width {
		return width - 1
	}
	return c
}

func colorBar(bar string, s health.Status) string {
	switch s {
	case health.Delayed:
		return ui.Red(bar)
	case health.AtRisk:
		return ui.Yellow(bar)
	case health.Completed:
		return ui.Dim(bar)
	default:
		return ui.Green(bar)
	}
}

func label(row gantt.Row) string {
	code := row.Code()
	if row.Activity == "" || row.Activity == code {
		return code
	}
	return code + " " + row.Activity
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n-3]) + "..."
}

func barLength(v, total float64, width int) int {
	if total <= 0 || v <= 0 {
		return 0
	}
	n := int(v / total * float64(width))
	if n < 1 {
		n = 1
	}
	return n
}

func riskColor(pct int) func(a ...interface{}) string {
	switch {
	case pct >= 50:
		return ui.BoldRed
	case pct >= 20:
		return ui.BoldYellow
	default:
		return ui.BoldGreen
	}
}

func topBucket(c delay.Category) string {
	if c == "" {
		return ui.Dim(NoDelayBucket)
	}
	return ui.Red(c.String())
}

func scope(rep *engine.Report) string {
	module, group := rep.Module, rep.Group
	if module == "" {
		module = "ALL"
	}
	if group == "" {
		group = "ALL"
	}
	return fmt.Sprintf("module %s, group %s", module, group)
}

// PrintBriefing writes a narrative briefing below the dashboard.
func PrintBriefing(w io.Writer, b *claude.Briefing) {
	if b == nil {
		return
	}
	fmt.Fprintf(w, "\n%s %s\n", "📝", ui.BoldCyan(b.Headline))
	for _, risk := range b.Risks {
		fmt.Fprintf(w, "  %s %s\n", ui.Yellow("•"), risk)
	}
	if b.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", b.Summary)
	}
}

// JSON returns the machine-readable report.
func (r *Reporter) JSON() ([]byte, error) {
	type output struct {
		Project string `json:"project"`
		Version string `json:"version"`
		*engine.Report
	}
	return json.MarshalIndent(output{Project: r.Project, Version: r.Version, Report: r.Report}, "", "  ")
}
