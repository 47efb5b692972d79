package advisor

import (
	"strconv"
	"strings"
	"text/template"

	"github.com/mikematt33/sprint-inspect/pkg/models"
)

var funcs = template.FuncMap{
	"fallback": func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	},
	"points": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
}

const contextBlock = `- Team: {{fallback .Team.Label "Unknown"}}
- Project: {{fallback .Project.Name "Unknown"}}
- Sprint: {{fallback .Sprint.Name "Unknown"}}
- Sprint Goal: {{fallback .Sprint.Goal "No goal set"}}
- Duration: {{.Metrics.DurationDays}} days`

var recommendationTmpl = template.Must(template.New("recommendations").Funcs(funcs).Parse(
	`You are an expert Agile coach reviewing a finished sprint. Suggest 3-5 actionable recommendations based on the data below.

Sprint:
` + contextBlock + `

Metrics:
- Total Issues: {{.Metrics.TotalIssues}}
- Completed Issues: {{.Metrics.CompletedIssues}} ({{.Metrics.CompletionRate}}%)
- In Progress: {{.Metrics.InProgressIssues}}
- Not Started: {{.Metrics.NotStartedIssues}}
- Blocked: {{.Metrics.BlockedIssues}}
- Total Story Points: {{points .Metrics.TotalStoryPoints}}
- Completed Story Points: {{points .Metrics.CompletedStoryPoints}} ({{.Metrics.VelocityPercentage}}%)
- Velocity: {{.Metrics.Velocity}} issues

Health: {{.Health.Overall}}
{{range .Health.Indicators}}- {{.Name}}: {{.Status}} - {{.Message}}
{{end}}
Current Blockers:
{{range $i, $b := .Blockers}}{{if lt $i 3}}- {{$b.Key}}: {{$b.Summary}} (Priority: {{$b.Priority}})
{{end}}{{else}}- No blockers
{{end}}
Key Accomplishments:
{{range $i, $a := .Accomplishments}}{{if lt $i 5}}- {{$a.Key}}: {{$a.Summary}}
{{end}}{{else}}- None recorded
{{end}}
Answer with a JSON array of 3-5 objects ranked by impact:

[
  {
    "category": "Velocity, Blockers, WIP Limit, Sprint Planning, Team Health or similar",
    "priority": "High|Medium|Low",
    "recommendation": "One specific, actionable sentence"
  }
]

Return only the JSON array.`))

var slideTmpl = template.Must(template.New("slides").Funcs(funcs).Parse(
	`You are an expert Agile coach writing an executive sprint summary for one presentation slide laid out as a 2x2 grid.

Sprint:
` + contextBlock + `

Metrics:
- Overall Health: {{.Health.Overall}}
- Completed Issues: {{.Metrics.CompletedIssues}}/{{.Metrics.TotalIssues}} ({{.Metrics.CompletionRate}}%)
- Story Points: {{points .Metrics.CompletedStoryPoints}} of {{points .Metrics.TotalStoryPoints}} ({{.Metrics.VelocityPercentage}}%)
- In Progress: {{.Metrics.InProgressIssues}}
- Not Started: {{.Metrics.NotStartedIssues}}
- Blocked: {{.Metrics.BlockedIssues}}

Health Indicators:
{{range .Health.Indicators}}- {{.Name}}: {{.Status}} - {{.Message}}
{{end}}
Top Blockers:
{{range $i, $b := .Blockers}}{{if lt $i 3}}- [{{$b.Priority}}] {{$b.Key}}: {{$b.Summary}}
{{end}}{{else}}- No blockers
{{end}}
Key Accomplishments:
{{range $i, $a := .Accomplishments}}{{if lt $i 5}}- {{$a.Key}}: {{$a.Summary}}
{{end}}{{else}}- None recorded
{{end}}
Write four sections:
1. healthSummary: 3-4 bullets, at most 50 characters each, on overall health, completion and velocity.
2. accomplishments: 3-5 bullets, at most 45 characters each, on the most valuable delivered work.
3. blockers: 3-4 bullets, at most 45 characters each, on active blockers or what keeps momentum.
4. recommendations: 3-4 bullets, at most 55 characters each, prefixed with [High], [Medium] or [Low].

Return only this JSON object:

{
  "healthSummary": {"title": "Sprint Health Metrics", "bullets": ["..."]},
  "accomplishments": {"title": "Key Accomplishments", "bullets": ["..."]},
  "blockers": {"title": "Blockers & Risks", "bullets": ["..."]},
  "recommendations": {"title": "Recommendations", "bullets": ["[High] ..."]}
}`))

// RecommendationPrompt renders the recommendation request for a summary.
func RecommendationPrompt(s models.Summary) (string, error) {
	return render(recommendationTmpl, s)
}

// SlidePrompt renders the slide narrative request for a summary.
func SlidePrompt(s models.Summary) (string, error) {
	return render(slideTmpl, s)
}

func render(t *template.Template, s models.Summary) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, s); err != nil {
		return "", err
	}
	return b.String(), nil
}
