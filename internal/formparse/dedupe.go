package formparse

import "github.com/stemsi/formfill-backend/internal/model"

// Dedupe drops every question whose normalized text was already seen,
// keeping the first occurrence and the original order.
func Dedupe(questions []model.Question) []model.Question {
	seen := make(map[string]struct{}, len(questions))
	out := make([]model.Question, 0, len(questions))
	for _, q := range questions {
		key := Normalize(q.Text)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
	}
	return out
}
