package formparse

import (
	"regexp"
	"slices"
	"strings"

	"github.com/stemsi/formfill-backend/internal/model"
)

var (
	numberedRe     = regexp.MustCompile(`^(\d+)[.)]\s*(.+)$`)
	manualOptionRe = regexp.MustCompile(`(?i)^[a-e][.)]`)
)

// ParseManual parses a pasted quiz of numbered prompts followed by lettered
// options:
//
//	1. Siapa presiden pertama Indonesia?
//	a. Soekarno
//	b. Soeharto
//
// Unlabelled lines continue the current prompt. Every question is marked
// required. A prompt with a single option degrades to free text.
func ParseManual(text string) []model.Question {
	var (
		questions []model.Question
		current   *model.Question
	)

	flush := func() {
		if current == nil || strings.TrimSpace(current.Text) == "" {
			return
		}
		current.Text = collapse(current.Text)
		if len(current.Options) >= 2 {
			current.Kind = model.QuestionKindMultipleChoice
		} else {
			current.Kind = model.QuestionKindFreeText
			current.Options = nil
		}
		questions = append(questions, *current)
	}

	for _, line := range SplitLines(text) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := numberedRe.FindStringSubmatch(trimmed); m != nil {
			flush()
			current = &model.Question{Text: m[2], Required: true}
			continue
		}
		if current == nil {
			continue
		}
		if manualOptionRe.MatchString(trimmed) {
			if opt := stripOptionPrefix(trimmed); opt != "" && !slices.Contains(current.Options, opt) {
				current.Options = append(current.Options, opt)
			}
			continue
		}
		current.Text += " " + trimmed
	}
	flush()

	return finalize(questions)
}
