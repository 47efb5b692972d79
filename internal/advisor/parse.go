package advisor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/mikematt33/sprint-inspect/pkg/models"
)

// StripFences removes a surrounding Markdown code fence, if any. The whole
// opening fence line goes, including any language tag.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(s, "```"); ok {
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			rest = rest[i+1:]
		} else {
			rest = strings.TrimLeftFunc(rest, unicode.IsLetter)
		}
		s = strings.TrimSpace(rest)
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

type rawRecommendation struct {
	Category       *string `json:"category"`
	Priority       *string `json:"priority"`
	Recommendation *string `json:"recommendation"`
}

// ParseRecommendations decodes a non-empty JSON array of recommendations.
// Missing fields default to General, Medium and empty text.
func ParseRecommendations(text string) ([]models.Recommendation, error) {
	cleaned := StripFences(text)
	if !strings.HasPrefix(cleaned, "[") {
		return nil, errors.New("response is not a JSON array")
	}

	var raw []rawRecommendation
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse recommendations: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("response contains no recommendations")
	}

	recs := make([]models.Recommendation, 0, len(raw))
	for _, r := range raw {
		recs = append(recs, models.Recommendation{
			Category: valueOr(r.Category, "General"),
			Priority: valueOr(r.Priority, "Medium"),
			Text:     valueOr(r.Recommendation, ""),
		})
	}
	return recs, nil
}

// ParseSlides decodes the four-section slide object; every section is required.
func ParseSlides(text string) (models.SlideContent, error) {
	var raw map[string]*models.SlideSection
	if err := json.Unmarshal([]byte(StripFences(text)), &raw); err != nil {
		return models.SlideContent{}, fmt.Errorf("failed to parse slide content: %w", err)
	}

	var missing []string
	section := func(key string) models.SlideSection {
		s := raw[key]
		if s == nil {
			missing = append(missing, key)
			return models.SlideSection{}
		}
		return *s
	}

	content := models.SlideContent{
		HealthSummary:   section("healthSummary"),
		Accomplishments: section("accomplishments"),
		Blockers:        section("blockers"),
		Recommendations: section("recommendations"),
	}
	if len(missing) > 0 {
		return models.SlideContent{}, fmt.Errorf("slide content missing sections: %s", strings.Join(missing, ", "))
	}
	return content, nil
}

func valueOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}
