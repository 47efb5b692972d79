package report

import (
	"strings"
	"unicode"
)

const (
	filePrefix   = "sprint-summary"
	DeckFilename = "sprint-summary-presentation.pptx"
)

// Filename names a per-team summary file, e.g. sprint-summary-PROJ-Team_Alpha_.json.
func Filename(projectKey, teamLabel, ext string) string {
	return filePrefix + "-" + projectKey + "-" + sanitize(teamLabel) + "." + ext
}

// CombinedFilename names the combined summary file.
func CombinedFilename(ext string) string {
	return filePrefix + "-combined." + ext
}

// sanitize replaces every rune that is not a letter or digit with an underscore.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, s)
}
