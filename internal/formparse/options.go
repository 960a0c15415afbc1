package formparse

import (
	"regexp"
	"slices"
	"strings"
)

// maxOptionRunes is the longest line still accepted as an option.
const maxOptionRunes = 120

// Point labels only ever decorate prompts.
var pointsLabelRe = regexp.MustCompile(`(?i)\s\d+\s*(?:poin|points?)[\s*\\]*$`)

// CollectOptions gathers the option lines following a question candidate.
// It starts at lines[start] and returns the distinct options in order of
// appearance plus the index of the first line it did not consume.
//
// Collection stops without consuming the line at a navigation label, at a
// line that looks like the next prompt, or at a long free-text line once
// options have been seen. Blank lines never stop collection.
func CollectOptions(lines []string, start int) ([]string, int) {
	var options []string

	for j := start; j < len(lines); j++ {
		raw := strings.TrimSpace(lines[j])
		switch {
		case raw == "":
			continue
		case isNavigation(raw):
			return options, j
		case isPlaceholder(raw), IsIgnorable(raw):
			continue
		}

		candidate := cleanOptionLine(raw)
		if looksLikePrompt(raw, candidate) {
			return options, j
		}

		if optionShaped(candidate) {
			opt := stripOptionPrefix(candidate)
			if opt != "" && !IsIgnorable(opt) && !slices.Contains(options, opt) {
				options = append(options, opt)
			}
			continue
		}

		if len(options) > 0 {
			return options, j
		}
	}

	return options, len(lines)
}

// looksLikePrompt reports whether an option-position line is really the start
// of the next question: it carries a required marker, ends like a prompt,
// is numbered, or has a point label.
func looksLikePrompt(raw, candidate string) bool {
	return strings.Contains(raw, "*") ||
		strings.HasSuffix(candidate, "?") ||
		strings.HasSuffix(candidate, ":") ||
		ordinalRe.MatchString(raw) ||
		pointsLabelRe.MatchString(raw)
}

func optionShaped(candidate string) bool {
	n := runeLen(candidate)
	return n > 0 && n < maxOptionRunes &&
		!strings.HasSuffix(candidate, "?") &&
		!strings.HasSuffix(candidate, ":") &&
		!strings.Contains(candidate, "*") &&
		!strings.HasPrefix(candidate, "[")
}
