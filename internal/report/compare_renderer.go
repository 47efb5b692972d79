package report

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/mikematt33/sprint-inspect/pkg/baseline"
)

// ComparisonTextRenderer prints a baseline comparison for a terminal.
type ComparisonTextRenderer struct {
	NoColor bool
}

func (r *ComparisonTextRenderer) Render(comp *baseline.ComparisonResult, w io.Writer) error {
	if comp == nil {
		_, _ = fmt.Fprintln(w, "Nothing to compare.")
		return nil
	}

	green := r.paint(color.FgGreen)
	red := r.paint(color.FgRed)
	bold := r.paint(color.Bold)

	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, bold.Sprint("📊 Comparison with Previous Sprint"))
	_, _ = fmt.Fprintf(w, "Previous: %s (%s)\n", describe(comp.Previous), stamp(comp.Previous.GeneratedAt))
	_, _ = fmt.Fprintf(w, "Current:  %s (%s)\n", describe(comp.Current), stamp(comp.Current.GeneratedAt))
	_, _ = fmt.Fprintln(w, "")

	summary := comp.Summary
	if summary.HasRegression {
		_, _ = fmt.Fprintln(w, red.Sprint("⚠️  REGRESSION DETECTED"))
	} else {
		_, _ = fmt.Fprintln(w, green.Sprint("✅ No significant regression"))
	}
	_, _ = fmt.Fprintln(w, "")

	_, _ = fmt.Fprintln(w, bold.Sprint("Key Changes:"))
	r.printDelta(w, "Completion Rate", summary.CompletionRateDelta, true)
	r.printDelta(w, "Story Points %", summary.VelocityPercentDelta, true)
	r.printDelta(w, "Blocked Issues", float64(summary.BlockedIssueDelta), false)
	_, _ = fmt.Fprintln(w, "")

	_, _ = fmt.Fprintf(w, "📈 Improved metrics: %s\n", green.Sprint(summary.TotalImprovedMetrics))
	_, _ = fmt.Fprintf(w, "📉 Degraded metrics: %s\n", red.Sprint(summary.TotalDegradedMetrics))
	_, _ = fmt.Fprintln(w, "")

	if len(comp.MetricDiff) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprintln(tw, "METRIC\tPREVIOUS\tCURRENT\tDELTA")
		_, _ = fmt.Fprintln(tw, "------\t--------\t-------\t-----")
		for _, change := range comp.MetricDiff {
			_, _ = fmt.Fprintf(tw, "%s\t%g\t%g\t%+g\n", change.Key, change.Previous, change.Current, change.Delta)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(w, "")
	}

	if len(comp.TeamDiff) > 0 {
		_, _ = fmt.Fprintln(w, bold.Sprint("Teams:"))
		for _, team := range comp.TeamDiff {
			_, _ = fmt.Fprintf(w, "  • %s (%s): %s → %s, completion %+.1f, velocity %+d\n",
				team.Team, team.Project, team.PreviousHealth, team.CurrentHealth,
				team.CompletionRateDelta, team.VelocityDelta)
		}
		_, _ = fmt.Fprintln(w, "")
	}
	return nil
}

func (r *ComparisonTextRenderer) printDelta(w io.Writer, name string, delta float64, higherIsBetter bool) {
	arrow := "→"
	c := r.paint(color.Reset)

	if delta > 0 {
		arrow = "↑"
		if higherIsBetter {
			c = r.paint(color.FgGreen)
		} else {
			c = r.paint(color.FgRed)
		}
	} else if delta < 0 {
		arrow = "↓"
		if higherIsBetter {
			c = r.paint(color.FgRed)
		} else {
			c = r.paint(color.FgGreen)
		}
	}

	_, _ = fmt.Fprintf(w, "  %-20s %s\n", name+":", c.Sprintf("%s %.1f", arrow, delta))
}

func (r *ComparisonTextRenderer) paint(attr color.Attribute) *color.Color {
	c := color.New(attr)
	if r.NoColor {
		c.DisableColor()
	}
	return c
}

// ComparisonJSONRenderer writes the comparison as indented JSON.
type ComparisonJSONRenderer struct{}

func (r *ComparisonJSONRenderer) Render(comp *baseline.ComparisonResult, w io.Writer) error {
	return encodeJSON(comp, w)
}

func describe(s *baseline.Snapshot) string {
	if s.Sprint != "" {
		return s.Label + " / " + s.Sprint
	}
	return s.Label
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "unknown time"
	}
	return t.Format(time.RFC3339)
}
