package generate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/stemsi/formfill-backend/internal/model"
)

type rawDraft struct {
	QuestionID json.RawMessage `json:"questionId"`
	Answer     json.RawMessage `json:"answer"`
}

// ParseDrafts extracts the JSON array of {questionId, answer} pairs from a
// model reply. ok is false when no array could be decoded, in which case one
// placeholder draft per question is returned instead.
//
// A numeric questionId ("3" or 3) is taken as a 1-based position in
// questions when it does not name a question directly.
func ParseDrafts(reply string, questions []model.Question) (drafts []model.Draft, ok bool) {
	body := extractArray(StripCodeFences(reply))
	var raw []rawDraft
	if body == "" || json.Unmarshal([]byte(body), &raw) != nil {
		return Placeholders(questions), false
	}

	known := make(map[string]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}

	drafts = make([]model.Draft, 0, len(raw))
	for _, r := range raw {
		id := scalarText(r.QuestionID)
		if !known[id] {
			if n, err := strconv.Atoi(id); err == nil && n >= 1 && n <= len(questions) {
				id = questions[n-1].ID
			}
		}
		if id == "" {
			continue
		}
		drafts = append(drafts, model.Draft{QuestionID: id, Answer: scalarText(r.Answer)})
	}
	return drafts, true
}

// Placeholders returns the fallback drafts used when a reply is unreadable.
func Placeholders(questions []model.Question) []model.Draft {
	drafts := make([]model.Draft, len(questions))
	for i, q := range questions {
		drafts[i] = model.Draft{
			QuestionID: q.ID,
			Answer:     fmt.Sprintf("Error parsing AI response for question %d", i+1),
		}
	}
	return drafts
}

// StripCodeFences removes a surrounding markdown code fence.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// extractArray returns the span from the first '[' to the last ']'.
func extractArray(s string) string {
	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// scalarText renders a JSON string, number or bool as plain text.
func scalarText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return ""
	}
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(string(raw))
	}
}
