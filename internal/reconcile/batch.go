package reconcile

import (
	"math/rand/v2"

	"github.com/stemsi/formfill-backend/internal/model"
)

// BatchOptions tunes Batch.
type BatchOptions struct {
	// WrongCount is the number of choice questions to answer incorrectly.
	WrongCount int
	// Rand drives miss selection; nil means a time-seeded source.
	Rand *rand.Rand
	// Overrides are human-supplied answers keyed by question id. They win over
	// drafts, are reported as manual and are never missed on purpose.
	Overrides map[string]string
	// Protected ids are never missed on purpose.
	Protected map[string]bool
}

// Outcome is the reconciled answer set for one batch.
type Outcome struct {
	Answers   []model.Answer
	Missed    []string
	Unmatched []string
}

// Batch reconciles drafts onto questions, in question order, and applies the
// deliberate-miss policy. The first draft for a question id wins; questions
// with no draft get an empty, unmatched answer. Only matched choice answers
// can be missed on purpose.
func Batch(questions []model.Question, drafts []model.Draft, opts BatchOptions) Outcome {
	byID := make(map[string]string, len(drafts))
	for _, d := range drafts {
		if _, ok := byID[d.QuestionID]; !ok {
			byID[d.QuestionID] = d.Answer
		}
	}

	out := Outcome{
		Answers:   make([]model.Answer, 0, len(questions)),
		Missed:    []string{},
		Unmatched: []string{},
	}
	correct := make(map[string]int, len(questions))
	var missable []model.Question

	for _, q := range questions {
		raw, manual := opts.Overrides[q.ID]
		if !manual {
			var ok bool
			if raw, ok = byID[q.ID]; !ok {
				out.Answers = append(out.Answers, model.Answer{QuestionID: q.ID})
				out.Unmatched = append(out.Unmatched, q.ID)
				continue
			}
		}

		// The index comes from the raw answer: canonical text such as
		// "B.J. Habibie" would read as a letter label on a second pass.
		text, idx := resolveAnswer(q, raw)
		if idx < 0 {
			out.Unmatched = append(out.Unmatched, q.ID)
		}
		out.Answers = append(out.Answers, model.Answer{QuestionID: q.ID, Text: text, IsManual: manual})

		// Unmatched answers are reported as they are, never swapped for an option.
		if q.IsMultipleChoice() && idx >= 0 && !manual && !opts.Protected[q.ID] {
			correct[q.ID] = idx
			missable = append(missable, q)
		}
	}

	if opts.WrongCount <= 0 || len(missable) == 0 {
		return out
	}

	rng := opts.Rand
	if rng == nil {
		rng = NewSeededRand(rand.Int64())
	}
	selected := SelectMisses(missable, opts.WrongCount, rng)

	for i, q := range questions {
		if !selected[q.ID] {
			continue
		}
		idx := wrongOption(q.Options, correct[q.ID], rng)
		out.Answers[i].Text = q.Options[idx]
		out.Missed = append(out.Missed, q.ID)
	}
	return out
}
