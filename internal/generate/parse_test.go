package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stemsi/formfill-backend/internal/model"
)

var sample = []model.Question{
	{ID: "q1", Text: "Siapa presiden pertama Indonesia?", Kind: model.QuestionKindMultipleChoice, Options: []string{"Soekarno", "Soeharto"}, Required: true},
	{ID: "q2", Text: "Tahun kemerdekaan", Kind: model.QuestionKindFreeText},
}

func TestParseDrafts(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []model.Draft
	}{
		{
			name:  "plain array",
			reply: `[{"questionId":"q1","answer":"Soekarno"},{"questionId":"q2","answer":"1945"}]`,
			want:  []model.Draft{{QuestionID: "q1", Answer: "Soekarno"}, {QuestionID: "q2", Answer: "1945"}},
		},
		{
			name:  "fenced with prose",
			reply: "```json\nBerikut jawabannya:\n[{\"questionId\":\"q2\",\"answer\":\" 1945 \"}]\n```",
			want:  []model.Draft{{QuestionID: "q2", Answer: "1945"}},
		},
		{
			name:  "numeric answer and positional id",
			reply: `[{"questionId":2,"answer":1945},{"questionId":"1","answer":"a. Soekarno"}]`,
			want:  []model.Draft{{QuestionID: "q2", Answer: "1945"}, {QuestionID: "q1", Answer: "a. Soekarno"}},
		},
		{
			name:  "unknown ids are kept",
			reply: `[{"questionId":"q9","answer":"x"},{"answer":"no id"}]`,
			want:  []model.Draft{{QuestionID: "q9", Answer: "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDrafts(tt.reply, sample)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDrafts_FallsBackToPlaceholders(t *testing.T) {
	for _, reply := range []string{"", "Maaf, saya tidak bisa.", "[not json]", `{"questionId":"q1"}`} {
		got, ok := ParseDrafts(reply, sample)
		assert.False(t, ok, reply)
		assert.Equal(t, []model.Draft{
			{QuestionID: "q1", Answer: "Error parsing AI response for question 1"},
			{QuestionID: "q2", Answer: "Error parsing AI response for question 2"},
		}, got)
	}
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, "[1]", StripCodeFences("```json\n[1]\n```"))
	assert.Equal(t, "[1]", StripCodeFences("```\n[1]```"))
	assert.Equal(t, "[1]", StripCodeFences("  [1] "))
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(sample)
	assert.Contains(t, p, "1. [q1] Siapa presiden pertama Indonesia?\n   Pilihan: Soekarno, Soeharto (Wajib)")
	assert.Contains(t, p, "2. [q2] Tahun kemerdekaan")
	assert.NotContains(t, p, "Tahun kemerdekaan (Wajib)")
	assert.Contains(t, p, "EXACTLY sama")
}

func TestSystemInstruction(t *testing.T) {
	s := SystemInstruction(model.UserContext{FullName: "Budi Santoso"})
	assert.Contains(t, s, "- Nama: Budi Santoso")
	assert.Contains(t, s, "- Email: Tidak diketahui")
}
