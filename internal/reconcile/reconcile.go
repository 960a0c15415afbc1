// Package reconcile maps free-form generated answers back onto the canonical
// option text of each question and plants deliberate misses on request.
package reconcile

import (
	"regexp"
	"strings"

	"github.com/stemsi/formfill-backend/internal/formparse"
	"github.com/stemsi/formfill-backend/internal/model"
)

var letterOptionRe = regexp.MustCompile(`^([a-e])[.)]\s*`)

// Reconcile resolves raw to the canonical option text of q.
//
// Free-text questions get the trimmed raw answer back. For choice questions a
// letter label ("b)", "c.") selects the option at that position, otherwise the
// first option equal to or overlapping the answer is returned verbatim. When
// nothing matches the trimmed raw answer is returned with matched == false.
func Reconcile(q model.Question, raw string) (answer string, matched bool) {
	answer, idx := resolveAnswer(q, raw)
	return answer, idx >= 0
}

// resolveAnswer is Reconcile plus the option index the raw answer resolved
// to. idx is -1 for unmatched answers and 0 for free-text questions.
func resolveAnswer(q model.Question, raw string) (answer string, idx int) {
	trimmed := strings.TrimSpace(raw)
	if !q.IsMultipleChoice() {
		return trimmed, 0
	}

	idx = Resolve(q.Options, trimmed)
	if idx < 0 {
		return trimmed, -1
	}
	return q.Options[idx], idx
}

// Resolve returns the index of the option raw refers to, or -1.
func Resolve(options []string, raw string) int {
	norm := formparse.Normalize(raw)
	if norm == "" {
		return -1
	}

	if m := letterOptionRe.FindStringSubmatch(norm); m != nil {
		if idx := int(m[1][0] - 'a'); idx < len(options) {
			return idx
		}
	}

	candidates := []string{norm}
	if rest := strings.TrimSpace(letterOptionRe.ReplaceAllString(norm, "")); rest != "" && rest != norm {
		candidates = append(candidates, rest)
	}

	for _, c := range candidates {
		for i, opt := range options {
			if formparse.Normalize(opt) == c {
				return i
			}
		}
	}
	for _, c := range candidates {
		for i, opt := range options {
			o := formparse.Normalize(opt)
			if o != "" && (strings.Contains(o, c) || strings.Contains(c, o)) {
				return i
			}
		}
	}
	return -1
}
