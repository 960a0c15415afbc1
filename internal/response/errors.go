package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrPermissionDenied   ErrCode = "PERMISSION_DENIED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound   ErrCode = "NOT_FOUND"
	ErrConflict   ErrCode = "CONFLICT"
	ErrSelfAction ErrCode = "SELF_ACTION_FORBIDDEN"

	// ─── Forms ─────────────────────────────────────────────────────────
	ErrNoQuestionsDetected  ErrCode = "NO_QUESTIONS_DETECTED"
	ErrScraperNotConfigured ErrCode = "SCRAPER_NOT_CONFIGURED"
	ErrScrapeFailed         ErrCode = "SCRAPE_FAILED"

	// ─── Generation ────────────────────────────────────────────────────
	ErrAICreditsExhausted ErrCode = "AI_CREDITS_EXHAUSTED"
	ErrAINotConfigured    ErrCode = "AI_NOT_CONFIGURED"
	ErrAIResponseFailed   ErrCode = "AI_RESPONSE_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email atau kata sandi salah."
	case ErrTokenRequired:
		return "Token autentikasi diperlukan."
	case ErrTokenInvalid:
		return "Token autentikasi tidak valid."
	case ErrTokenExpired:
		return "Token autentikasi telah kedaluwarsa."
	case ErrPermissionDenied:
		return "Anda tidak memiliki izin untuk tindakan ini."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validasi gagal. Silakan periksa masukan Anda."
	case ErrInvalidID:
		return "Format ID tidak valid."
	case ErrInvalidPayload:
		return "Payload permintaan tidak valid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Sumber daya tidak ditemukan."
	case ErrConflict:
		return "Sumber daya sudah ada."
	case ErrSelfAction:
		return "Tindakan ini tidak dapat dilakukan pada akun Anda sendiri."

	// ─── Forms ─────────────────────────────────────────────────────────
	case ErrNoQuestionsDetected:
		return "Tidak ada pertanyaan yang terdeteksi pada formulir ini."
	case ErrScraperNotConfigured:
		return "Layanan pengambil formulir belum dikonfigurasi."
	case ErrScrapeFailed:
		return "Gagal mengambil isi formulir."

	// ─── Generation ────────────────────────────────────────────────────
	case ErrAICreditsExhausted:
		return "Kredit AI habis. Silakan tambahkan kredit untuk melanjutkan."
	case ErrAINotConfigured:
		return "Layanan AI belum dikonfigurasi."
	case ErrAIResponseFailed:
		return "Gagal mendapatkan jawaban dari AI."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Terlalu banyak permintaan. Silakan coba lagi nanti."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Terjadi kesalahan server internal."
	default:
		return "Terjadi kesalahan yang tidak terduga."
	}
}
