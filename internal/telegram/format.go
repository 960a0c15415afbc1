package telegram

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/stemsi/formfill-backend/internal/generate"
	"github.com/stemsi/formfill-backend/internal/model"
	"github.com/stemsi/formfill-backend/internal/scrape"
)

// maxMessageRunes stays under Telegram's 4096-character message limit.
const maxMessageRunes = 4000

const helpText = `Kirim link Google Form atau tempel soal bernomor, nanti aku jawab.

Perintah:
/form <link> - jawab form dari link (tanpa link: ulangi form terakhir)
/wrong <n> - jumlah jawaban yang sengaja dibuat salah
/reset - hapus pengaturan chat ini
/help - tampilkan bantuan ini`

// formatAnswers renders the reconciled answers as plain text.
func formatAnswers(title string, questions []model.Question, res *model.AnswerFormResponse) string {
	missed := make(map[string]bool, len(res.Missed))
	for _, id := range res.Missed {
		missed[id] = true
	}
	unmatched := make(map[string]bool, len(res.Unmatched))
	for _, id := range res.Unmatched {
		unmatched[id] = true
	}
	byID := make(map[string]model.Answer, len(res.Answers))
	for _, a := range res.Answers {
		byID[a.QuestionID] = a
	}

	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "📝 %s\n\n", title)
	}
	for i, q := range questions {
		a := byID[q.ID]
		fmt.Fprintf(&b, "%d. %s\n", i+1, q.Text)

		text := a.Text
		if text == "" {
			text = "(tidak terjawab)"
		}
		b.WriteString("   ➜ " + text)
		switch {
		case missed[q.ID]:
			b.WriteString("  ✗")
		case unmatched[q.ID] && q.IsMultipleChoice():
			b.WriteString("  ?")
		}
		b.WriteString("\n\n")
	}

	if len(res.Missed) > 0 {
		fmt.Fprintf(&b, "✗ = sengaja salah (%d)\n", len(res.Missed))
	}
	if len(res.Unmatched) > 0 {
		fmt.Fprintf(&b, "? = jawaban tidak cocok dengan pilihan (%d)\n", len(res.Unmatched))
	}
	return strings.TrimRight(b.String(), "\n")
}

// splitMessage cuts text into chunks of at most limit runes, preferring
// paragraph and line boundaries.
func splitMessage(text string, limit int) []string {
	var chunks []string
	for utf8.RuneCountInString(text) > limit {
		cut := runeOffset(text, limit)
		head := text[:cut]
		if i := strings.LastIndex(head, "\n\n"); i > 0 {
			cut = i
		} else if i := strings.LastIndex(head, "\n"); i > 0 {
			cut = i
		}
		chunks = append(chunks, strings.TrimRight(text[:cut], "\n"))
		text = strings.TrimLeft(text[cut:], "\n")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

// runeOffset returns the byte offset of the n-th rune of s.
func runeOffset(s string, n int) int {
	i := 0
	for off := range s {
		if i == n {
			return off
		}
		i++
	}
	return len(s)
}

// errorText turns a collaborator error into a chat reply.
func errorText(err error) string {
	var apiErr *scrape.APIError
	switch {
	case errors.Is(err, generate.ErrRateLimited):
		return "⏳ Batas permintaan AI tercapai. Coba lagi sebentar lagi."
	case errors.Is(err, generate.ErrQuotaExhausted):
		return "💳 Kuota AI habis."
	case errors.Is(err, generate.ErrNotConfigured):
		return "⚠️ AI belum dikonfigurasi di server."
	case errors.Is(err, scrape.ErrNotConfigured):
		return "⚠️ Scraper belum dikonfigurasi di server."
	case errors.As(err, &apiErr):
		return "❌ Gagal membuka form. Pastikan link benar dan form bersifat publik."
	default:
		return "❌ Terjadi kesalahan. Coba lagi nanti."
	}
}

// displayName joins the sender's first and last name.
func displayName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
