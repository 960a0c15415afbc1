package formparse

import (
	"regexp"

	"github.com/stemsi/formfill-backend/internal/model"
)

// IdentityField names the profile value an identity question asks for.
type IdentityField string

const (
	IdentityNone      IdentityField = ""
	IdentityFullName  IdentityField = "full_name"
	IdentityEmail     IdentityField = "email"
	IdentityClass     IdentityField = "class"
	IdentityStudentID IdentityField = "student_id"
	IdentityBirthDate IdentityField = "birth_date"
	IdentityPhone     IdentityField = "phone"
	IdentitySchool    IdentityField = "school"
	IdentityAddress   IdentityField = "address"
	IdentityGender    IdentityField = "gender"
)

type identityKeyword struct {
	field IdentityField
	re    *regexp.Regexp
}

// Order matters: "email address" must resolve to email, not address.
var identityKeywords = []identityKeyword{
	{IdentityEmail, regexp.MustCompile(`(?i)\be-?mail\b|\bsurel\b`)},
	{IdentityBirthDate, regexp.MustCompile(`(?i)tanggal lahir|tgl\.? lahir|tempat,? tanggal lahir|\bttl\b|date of birth|birth ?date|\bdob\b`)},
	{IdentityStudentID, regexp.MustCompile(`(?i)\b(?:nisn|nis|nim|nik|npm)\b|nomor induk|no\.? induk|student id|id number|nomor absen|no\.? absen|\babsen\b`)},
	{IdentityPhone, regexp.MustCompile(`(?i)no\.? (?:hp|telp|wa)\b|nomor (?:hp|telepon|whatsapp|wa)\b|\bphone\b|whatsapp`)},
	{IdentityClass, regexp.MustCompile(`(?i)\bkelas\b|\bclass\b|\bgrade\b|\brombel\b`)},
	{IdentitySchool, regexp.MustCompile(`(?i)(?:asal|nama) sekolah|\bschool\b|\binstansi\b`)},
	{IdentityAddress, regexp.MustCompile(`(?i)\balamat\b|\baddress\b|\bdomisili\b`)},
	{IdentityGender, regexp.MustCompile(`(?i)jenis kelamin|\bgender\b`)},
	{IdentityFullName, regexp.MustCompile(`(?i)\bnama\b|\bname\b`)},
}

// IdentityFieldOf returns the profile field text asks for, or IdentityNone.
func IdentityFieldOf(text string) IdentityField {
	for _, kw := range identityKeywords {
		if kw.re.MatchString(text) {
			return kw.field
		}
	}
	return IdentityNone
}

// Classify labels a cleaned prompt as identity or quiz. Prompts that match
// no identity keyword are quiz items.
func Classify(text string) model.QuestionCategory {
	if IdentityFieldOf(text) != IdentityNone {
		return model.QuestionCategoryIdentity
	}
	return model.QuestionCategoryQuiz
}
