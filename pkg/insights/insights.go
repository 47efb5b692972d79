// Package insights classifies sprint health and derives the deterministic
// advice used when no text-generation backend is available.
package insights

import (
	"fmt"

	"github.com/mikematt33/sprint-inspect/pkg/models"
)

// Threshold boundaries shared by the velocity and completion rate checks.
const (
	PoorBelow = 60.0
	FairBelow = 80.0
)

// Indicator names, in evaluation order.
const (
	IndicatorVelocity   = "Velocity"
	IndicatorCompletion = "Completion Rate"
	IndicatorBlockers   = "Blockers"
	IndicatorWIP        = "Work in Progress"
)

var severity = map[models.HealthLevel]int{
	models.HealthGood: 0,
	models.HealthFair: 1,
	models.HealthPoor: 2,
}

// Level maps a percentage onto Good, Fair or Poor.
func Level(pct models.Percent) models.HealthLevel {
	switch v := pct.Float(); {
	case v < PoorBelow:
		return models.HealthPoor
	case v < FairBelow:
		return models.HealthFair
	default:
		return models.HealthGood
	}
}

// Severity ranks an overall rating; higher is worse. Unknown levels rank as Good.
func Severity(level models.HealthLevel) int {
	return severity[level]
}

// worse returns the more severe of two ratings.
func worse(a, b models.HealthLevel) models.HealthLevel {
	if Severity(b) > Severity(a) {
		return b
	}
	return a
}

// ClassifyHealth rates a sprint and explains the rating. Indicators are always
// emitted in the order velocity, completion rate, blockers, work in progress.
func ClassifyHealth(m models.Metrics) models.HealthRating {
	rating := models.HealthRating{Overall: models.HealthGood}

	velocity := Level(m.VelocityPercentage)
	rating.Indicators = append(rating.Indicators, models.Indicator{
		Name:    IndicatorVelocity,
		Status:  velocity,
		Message: rateMessage(velocity, m.VelocityPercentage, "story points"),
	})
	rating.Overall = worse(rating.Overall, velocity)

	completion := Level(m.CompletionRate)
	rating.Indicators = append(rating.Indicators, models.Indicator{
		Name:    IndicatorCompletion,
		Status:  completion,
		Message: rateMessage(completion, m.CompletionRate, "issues"),
	})
	rating.Overall = worse(rating.Overall, completion)

	if m.BlockedIssues > 0 {
		rating.Indicators = append(rating.Indicators, models.Indicator{
			Name:    IndicatorBlockers,
			Status:  models.HealthWarning,
			Message: fmt.Sprintf("%d blocked issue(s) detected", m.BlockedIssues),
		})
		rating.Overall = worse(rating.Overall, models.HealthFair)
	}

	// Informational only, the rating is left alone.
	if m.InProgressIssues > m.CompletedIssues {
		rating.Indicators = append(rating.Indicators, models.Indicator{
			Name:    IndicatorWIP,
			Status:  models.HealthWarning,
			Message: "More issues in progress than completed",
		})
	}

	return rating
}

func rateMessage(level models.HealthLevel, pct models.Percent, unit string) string {
	if level == models.HealthPoor {
		return fmt.Sprintf("Only %s%% of %s completed", pct, unit)
	}
	return fmt.Sprintf("%s%% of %s completed", pct, unit)
}
