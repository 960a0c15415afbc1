package generate

import (
	"fmt"
	"strings"

	"github.com/stemsi/formfill-backend/internal/model"
)

const systemPrompt = `Kamu adalah AI assistant yang sangat pintar dalam menjawab soal ujian dan kuis.
Tugasmu adalah memberikan jawaban yang BENAR dan AKURAT untuk setiap pertanyaan.

INSTRUKSI PENTING:
1. Untuk soal pilihan ganda, pilih jawaban yang PALING BENAR dari opsi yang tersedia
2. Untuk soal essay/isian, berikan jawaban yang singkat, padat, dan tepat
3. Gunakan pengetahuanmu untuk menjawab dengan akurat
4. Jika ada konteks user (nama, email), gunakan untuk pertanyaan identitas
5. Format jawaban dalam JSON array sesuai urutan pertanyaan`

const unknown = "Tidak diketahui"

// SystemInstruction returns the instruction block for one request.
func SystemInstruction(uc model.UserContext) string {
	name, email := strings.TrimSpace(uc.FullName), strings.TrimSpace(uc.Email)
	if name == "" {
		name = unknown
	}
	if email == "" {
		email = unknown
	}
	return fmt.Sprintf("%s\n\nUser Context:\n- Nama: %s\n- Email: %s", systemPrompt, name, email)
}

// BuildPrompt renders questions as a numbered list followed by the expected
// answer format.
func BuildPrompt(questions []model.Question) string {
	var b strings.Builder
	b.WriteString("Jawab pertanyaan-pertanyaan berikut ini:\n\n")

	for i, q := range questions {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. [%s] %s", i+1, q.ID, q.Text)
		if q.IsMultipleChoice() {
			fmt.Fprintf(&b, "\n   Pilihan: %s", strings.Join(q.Options, ", "))
		}
		if q.Required {
			b.WriteString(" (Wajib)")
		}
	}

	b.WriteString(`

Berikan jawaban dalam format JSON array seperti ini:
[
  {"questionId": "q1", "answer": "jawaban1"},
  {"questionId": "q2", "answer": "jawaban2"}
]

PENTING: Pastikan jawaban untuk pilihan ganda EXACTLY sama dengan salah satu opsi yang tersedia.`)
	return b.String()
}
