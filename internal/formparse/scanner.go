// Package formparse extracts typed questions from scraped or pasted form text.
//
// Every function in this package is pure: it reads an immutable slice of
// lines and returns new values, so results are safe to share between
// goroutines and no locking is needed.
package formparse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/stemsi/formfill-backend/internal/model"
)

// titleScanLimit bounds the title search when the document has no legend.
const titleScanLimit = 20

var residualPlaceholderRe = regexp.MustCompile(`(?i)your answer|jawaban anda`)

// ParseDocument splits text into lines and extracts the document title and
// its questions. html is accepted for callers that have it but is not read.
func ParseDocument(text, html string) model.ParsedForm {
	_ = html

	lines := SplitLines(text)
	titleIdx, title := findTitle(lines)

	return model.ParsedForm{
		Title:     title,
		Questions: finalize(scan(lines, titleIdx)),
	}
}

// Scan extracts questions from lines, suppressing the document title.
func Scan(lines []string) []model.Question {
	titleIdx, _ := findTitle(lines)
	return finalize(scan(lines, titleIdx))
}

// SplitLines splits text on any newline convention.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

func scan(lines []string, titleIdx int) []model.Question {
	var questions []model.Question
	for i := 0; i < len(lines); {
		q, next := scanStep(lines, i, titleIdx)
		if q != nil {
			questions = append(questions, *q)
		}
		i = next
	}
	return questions
}

// scanStep inspects lines[i] and returns the question it starts, if any, and
// the index scanning resumes from. next is always greater than i.
func scanStep(lines []string, i, titleIdx int) (*model.Question, int) {
	raw := strings.TrimSpace(lines[i])
	if raw == "" || IsIgnorable(raw) || i == titleIdx {
		return nil, i + 1
	}

	text, required := cleanPrompt(raw)
	if runeLen(text) < minLineRunes || IsIgnorable(text) {
		return nil, i + 1
	}

	options, next := CollectOptions(lines, i+1)
	if next <= i {
		next = i + 1
	}

	if residualPlaceholderRe.MatchString(text) || strings.HasPrefix(text, "[") {
		return nil, next
	}

	q := &model.Question{
		Text:     text,
		Kind:     model.QuestionKindFreeText,
		Required: required,
	}
	if len(options) >= 2 {
		q.Kind = model.QuestionKindMultipleChoice
		q.Options = options
	}
	return q, next
}

// findTitle returns the index and text of the document title, or -1 when
// none is found. The title is the first meaningful line that appears before
// the required legend and before any line carrying a required marker.
func findTitle(lines []string) (int, string) {
	end := len(lines)
	for k, line := range lines {
		if isRequiredLegend(line) {
			end = k
			break
		}
	}
	if end == len(lines) && end > titleScanLimit {
		end = titleScanLimit
	}

	for k := 0; k < end; k++ {
		raw := strings.TrimSpace(lines[k])
		if raw == "" || IsIgnorable(raw) {
			continue
		}
		if strings.Contains(unescapeEmphasis(raw), "*") {
			return -1, ""
		}
		if title := cleanTitle(raw); runeLen(title) >= minLineRunes {
			return k, title
		}
	}
	return -1, ""
}

// finalize deduplicates and assigns ids and categories in output order.
func finalize(questions []model.Question) []model.Question {
	questions = Dedupe(questions)
	for i := range questions {
		questions[i].ID = fmt.Sprintf("q%d", i+1)
		questions[i].Category = Classify(questions[i].Text)
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions
}
