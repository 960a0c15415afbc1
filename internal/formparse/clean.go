package formparse

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	trailingStarRe = regexp.MustCompile(`\s*\*+\s*$`)
	leadingStarRe  = regexp.MustCompile(`^\*+\s*`)
	headingRe      = regexp.MustCompile(`^#+\s*`)
	ordinalRe      = regexp.MustCompile(`^\d+\.\s+`)
	pointsRe       = regexp.MustCompile(`(?i)\s+\d+\s*(?:poin|points?)\s*$`)
	bulletRe       = regexp.MustCompile(`^[-•○●◯▪◦]\s*`)
	letterPrefixRe = regexp.MustCompile(`(?i)^[a-e][.)]\s*`)
)

// Normalize lower-cases s, collapses inner whitespace and trims it.
func Normalize(s string) string {
	return strings.ToLower(collapse(s))
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func unescapeEmphasis(s string) string {
	return strings.ReplaceAll(s, `\*`, "*")
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// cleanPrompt strips markers, numbering and point labels from a question line.
// required is true when a required-marker glyph was present.
func cleanPrompt(raw string) (text string, required bool) {
	s := unescapeEmphasis(strings.TrimSpace(raw))
	required = strings.Contains(s, "*")

	s = trailingStarRe.ReplaceAllString(s, "")
	s = headingRe.ReplaceAllString(s, "")
	s = leadingStarRe.ReplaceAllString(s, "")
	s = collapse(s)
	s = ordinalRe.ReplaceAllString(s, "")
	s = pointsRe.ReplaceAllString(s, "")
	// "Question? * 3 poin" leaves the marker behind once the points are gone.
	s = trailingStarRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s), required
}

// cleanTitle keeps emphasis markers so a required prompt never equals a title.
func cleanTitle(raw string) string {
	s := unescapeEmphasis(strings.TrimSpace(raw))
	s = headingRe.ReplaceAllString(s, "")
	return collapse(s)
}

// cleanOptionLine prepares a line for the next-question and option-shape tests.
func cleanOptionLine(raw string) string {
	s := unescapeEmphasis(strings.TrimSpace(raw))
	s = ordinalRe.ReplaceAllString(s, "")
	s = pointsRe.ReplaceAllString(s, "")
	return collapse(s)
}

// stripOptionPrefix removes bullets and letter labels such as "a." or "B)".
func stripOptionPrefix(s string) string {
	s = bulletRe.ReplaceAllString(s, "")
	s = letterPrefixRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
