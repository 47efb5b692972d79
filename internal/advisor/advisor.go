// Package advisor asks a text-generation backend for recommendations and
// slide narratives, falling back to fixed rules whenever that fails.
package advisor

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/mikematt33/sprint-inspect/internal/llm"
	"github.com/mikematt33/sprint-inspect/pkg/insights"
	"github.com/mikematt33/sprint-inspect/pkg/models"
)

const (
	recommendationTokens = 1024
	slideTokens          = 2048
)

var errNoProvider = errors.New("no llm provider configured")

// Advisor produces narrative output for a summary. A nil provider is valid and
// always yields the deterministic fallbacks.
type Advisor struct {
	provider llm.Provider
	log      zerolog.Logger
}

func New(provider llm.Provider, log zerolog.Logger) *Advisor {
	return &Advisor{provider: provider, log: log}
}

// Enabled reports whether a backend is configured.
func (a *Advisor) Enabled() bool {
	return a.provider != nil
}

// Recommend makes one completion call and never fails: any error is logged and
// the rule table from insights is returned instead.
func (a *Advisor) Recommend(ctx context.Context, s models.Summary) []models.Recommendation {
	recs, err := a.recommend(ctx, s)
	if err != nil {
		if !errors.Is(err, errNoProvider) {
			a.log.Warn().Err(err).
				Str("project", s.Project.Key).
				Str("team", s.Team.Label).
				Msg("generated recommendations unavailable, using fallback rules")
		}
		return insights.FallbackRecommendations(s.Metrics)
	}
	return recs
}

func (a *Advisor) recommend(ctx context.Context, s models.Summary) ([]models.Recommendation, error) {
	if a.provider == nil {
		return nil, errNoProvider
	}
	prompt, err := RecommendationPrompt(s)
	if err != nil {
		return nil, err
	}
	text, err := a.provider.Complete(ctx, prompt, recommendationTokens)
	if err != nil {
		return nil, err
	}
	return ParseRecommendations(text)
}

// Slides returns the four-section narrative for a team slide.
func (a *Advisor) Slides(ctx context.Context, s models.Summary) models.SlideContent {
	content, err := a.slides(ctx, s)
	if err != nil {
		if !errors.Is(err, errNoProvider) {
			a.log.Warn().Err(err).
				Str("project", s.Project.Key).
				Str("team", s.Team.Label).
				Msg("generated slide content unavailable, using summary data")
		}
		return insights.FallbackSlides(s)
	}
	return content
}

func (a *Advisor) slides(ctx context.Context, s models.Summary) (models.SlideContent, error) {
	if a.provider == nil {
		return models.SlideContent{}, errNoProvider
	}
	prompt, err := SlidePrompt(s)
	if err != nil {
		return models.SlideContent{}, err
	}
	text, err := a.provider.Complete(ctx, prompt, slideTokens)
	if err != nil {
		return models.SlideContent{}, err
	}
	return ParseSlides(text)
}
