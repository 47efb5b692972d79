package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/mikematt33/sprint-inspect/pkg/models"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Ext returns the file extension used for the format.
func (f Format) Ext() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// Renderer writes a finished summary, or a combined summary, in one format.
type Renderer interface {
	Render(s *models.Summary, w io.Writer) error
	RenderCombined(c *models.CombinedSummary, w io.Writer) error
}

func NewRenderer(f Format) Renderer {
	switch f {
	case FormatMarkdown:
		return &MarkdownRenderer{}
	default:
		return &JSONRenderer{}
	}
}

type JSONRenderer struct{}

func (r *JSONRenderer) Render(s *models.Summary, w io.Writer) error {
	return encodeJSON(s, w)
}

func (r *JSONRenderer) RenderCombined(c *models.CombinedSummary, w io.Writer) error {
	return encodeJSON(c, w)
}

func encodeJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ConsoleRenderer prints the end-of-run table to a terminal.
type ConsoleRenderer struct {
	NoColor bool
}

func (r *ConsoleRenderer) Render(summaries []models.Summary, w io.Writer) error {
	if len(summaries) == 0 {
		_, _ = fmt.Fprintln(w, "No sprint summaries generated.")
		return nil
	}

	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "📊 SPRINT SUMMARY")
	_, _ = fmt.Fprintln(w, "==================================================")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PROJECT\tTEAM\tHEALTH\tCOMPLETION\tVELOCITY\tBLOCKED")
	for _, s := range summaries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s%%\t%d\t%d\n",
			s.Project.Key,
			s.Team.Label,
			r.health(s.Health.Overall),
			s.Metrics.CompletionRate,
			s.Metrics.Velocity,
			s.Metrics.BlockedIssues)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, "--------------------------------------------------")
	return nil
}

func (r *ConsoleRenderer) health(level models.HealthLevel) string {
	if r.NoColor {
		return string(level)
	}
	return HealthColor(level).Sprint(level)
}

// HealthColor maps a rating to its terminal color.
func HealthColor(level models.HealthLevel) *color.Color {
	switch level {
	case models.HealthGood:
		return color.New(color.FgGreen)
	case models.HealthFair, models.HealthWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

// HealthEmoji is the Markdown marker for a rating.
func HealthEmoji(level models.HealthLevel) string {
	switch level {
	case models.HealthGood:
		return "🟢"
	case models.HealthFair:
		return "🟡"
	case models.HealthWarning:
		return "⚠️"
	default:
		return "🔴"
	}
}

type count struct {
	Name  string
	Count int
}

// sortedCounts orders a histogram by count descending, then name.
func sortedCounts(m map[string]int) []count {
	out := make([]count, 0, len(m))
	for k, v := range m {
		out = append(out, count{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
