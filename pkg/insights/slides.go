package insights

import (
	"fmt"

	"github.com/mikematt33/sprint-inspect/pkg/models"
)

// Slide section titles used by the deterministic narrative.
const (
	SlideHealthTitle          = "Sprint Health Metrics"
	SlideAccomplishmentsTitle = "What We Delivered"
	SlideBlockersTitle        = "What's Blocking Us"
	SlideRecommendationsTitle = "Next Sprint Focus"
)

const maxSlideBullets = 4

// FallbackSlides builds slide content directly from a summary's data.
func FallbackSlides(s models.Summary) models.SlideContent {
	m := s.Metrics

	health := []string{
		fmt.Sprintf("Health: %s", s.Health.Overall),
		fmt.Sprintf("Done: %d/%d (%s%%)", m.CompletedIssues, m.TotalIssues, m.CompletionRate),
		fmt.Sprintf("Velocity: %d issues", m.Velocity),
		fmt.Sprintf("Blocked: %d", m.BlockedIssues),
	}

	var delivered []string
	for i, a := range s.Accomplishments {
		if i == maxSlideBullets {
			break
		}
		delivered = append(delivered, fmt.Sprintf("%s: %s", a.Key, Truncate(a.Summary, 38)))
	}
	if len(delivered) == 0 {
		delivered = []string{"No completed items"}
	}

	var blocking []string
	for i, b := range s.Blockers {
		if i == maxSlideBullets {
			break
		}
		blocking = append(blocking, fmt.Sprintf("%s: %s", b.Key, Truncate(b.Summary, 35)))
	}
	if len(blocking) == 0 {
		blocking = []string{"No blockers - clear path ahead ✓"}
	}

	var focus []string
	if m.VelocityPercentage.Float() < FairBelow {
		focus = append(focus, "[High] Review sprint capacity")
	} else {
		focus = append(focus, "[Low] Maintain velocity")
	}
	if m.BlockedIssues > 0 {
		focus = append(focus, fmt.Sprintf("[High] Clear %d blockers", m.BlockedIssues))
	} else {
		focus = append(focus, "[Low] Keep momentum")
	}
	if m.NotStartedIssues > 0 {
		focus = append(focus, fmt.Sprintf("[Medium] Review %d unstarted", m.NotStartedIssues))
	} else {
		focus = append(focus, "[Low] Good planning")
	}

	return models.SlideContent{
		HealthSummary:   models.SlideSection{Title: SlideHealthTitle, Bullets: health},
		Accomplishments: models.SlideSection{Title: SlideAccomplishmentsTitle, Bullets: delivered},
		Blockers:        models.SlideSection{Title: SlideBlockersTitle, Bullets: blocking},
		Recommendations: models.SlideSection{Title: SlideRecommendationsTitle, Bullets: focus},
	}
}

// Truncate shortens s to at most n runes, appending "..." when it cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
