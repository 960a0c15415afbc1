package telegram

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"

	"github.com/stemsi/formfill-backend/internal/generate"
	"github.com/stemsi/formfill-backend/internal/model"
	"github.com/stemsi/formfill-backend/internal/scrape"
)

func TestFormatAnswers(t *testing.T) {
	form := sampleForm()
	res := &model.AnswerFormResponse{
		Answers: []model.Answer{
			{QuestionID: "q1", Text: "Mars"},
			{QuestionID: "q2"},
		},
		Missed:    []string{"q1"},
		Unmatched: []string{"q2"},
	}

	out := formatAnswers(form.Title, form.Questions, res)

	assert.True(t, strings.HasPrefix(out, "📝 Kuis IPA"))
	assert.Contains(t, out, "1. Planet terbesar?\n   ➜ Mars  ✗")
	assert.Contains(t, out, "2. Jelaskan fotosintesis\n   ➜ (tidak terjawab)")
	assert.NotContains(t, out, "(tidak terjawab)  ?")
	assert.Contains(t, out, "sengaja salah (1)")
}

func TestSplitMessage(t *testing.T) {
	para := strings.Repeat("é", 30)
	text := strings.Join([]string{para, para, para, para}, "\n\n")

	chunks := splitMessage(text, 70)
	assert.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 70)
		assert.Equal(t, para+"\n\n"+para, c)
	}

	assert.Equal(t, []string{"pendek"}, splitMessage("pendek", 70))
	assert.Empty(t, splitMessage("", 70))

	long := strings.Repeat("x", 25)
	assert.Equal(t, []string{"xxxxxxxxxx", "xxxxxxxxxx", "xxxxx"}, splitMessage(long, 10))
}

func TestErrorText(t *testing.T) {
	assert.Contains(t, errorText(generate.ErrQuotaExhausted), "Kuota")
	assert.Contains(t, errorText(scrape.ErrNotConfigured), "Scraper")
	assert.Contains(t, errorText(&scrape.APIError{Status: 404}), "Gagal membuka form")
	assert.Contains(t, errorText(errors.New("boom")), "kesalahan")
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ani", displayName(&tgbotapi.User{FirstName: "Ani"}))
	assert.Equal(t, "", displayName(nil))
}
