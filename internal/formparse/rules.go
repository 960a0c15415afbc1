package formparse

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// minLineRunes is the shortest line that can carry a prompt or an option.
const minLineRunes = 3

// Rule flags a line as boilerplate. Rules are evaluated in order and the first
// match wins.
type Rule struct {
	Name  string
	Match func(line string) bool
}

func patternRule(name, expr string) Rule {
	re := regexp.MustCompile(expr)
	return Rule{Name: name, Match: re.MatchString}
}

var (
	navigationRe  = regexp.MustCompile(`(?i)^(?:next|back|previous|submit|clear form|clear selection|berikutnya|selanjutnya|kembali|sebelumnya|kirim|hapus formulir|kosongkan formulir|hapus pilihan)[\s.!>»→]*$`)
	placeholderRe = regexp.MustCompile(`(?i)^(?:your answer|jawaban anda|jawaban kamu)[\s.:]*$`)
	legendRe      = regexp.MustCompile(`(?i)indicates required|menunjukkan pertanyaan yang wajib`)
)

// Rules is the ordered boilerplate rule list. Append new patterns here.
var Rules = []Rule{
	{Name: "too_short", Match: func(line string) bool {
		return utf8.RuneCountInString(line) < minLineRunes
	}},
	patternRule("section_heading", `(?i)^(?:pilihan ganda|multiple choice|isian singkat|essay|esai|uraian)$`),
	patternRule("sign_in", `(?i)^(?:sign in|login|log in)\b`),
	patternRule("switch_account", `(?i)switch account|ganti akun|^(?:not shared|tidak dibagikan)$`),
	patternRule("save_progress", `(?i)save your progress|simpan progres`),
	{Name: "required_legend", Match: legendRe.MatchString},
	patternRule("answer_placeholder", `(?i)your answer|jawaban anda`),
	{Name: "navigation", Match: navigationRe.MatchString},
	patternRule("page_counter", `(?i)^(?:page|halaman)\s+\d+\s+(?:of|dari)\s+\d+$`),
	patternRule("password_warning", `(?i)never submit passwords|jangan pernah mengirimkan sandi`),
	patternRule("legal_notice", `(?i)this content is neither created|konten ini tidak dibuat|terms of service|persyaratan layanan|privacy policy|kebijakan privasi`),
	patternRule("abuse_report", `(?i)does this form look suspicious|formulir ini terlihat mencurigakan|report abuse|laporkan penyalahgunaan|^report$`),
	patternRule("branding", `(?i)google forms|help and feedback|bantuan dan masukan|contact form owner|hubungi pemilik formulir|help forms improve|bantu tingkatkan formulir`),
	patternRule("markdown_link", `(?i)^\[.*\]\(https?:`),
	patternRule("markdown_image", `^!\[.*\]\(`),
	{Name: "markup_only", Match: markupOnly},
}

// markupOnly reports whether the line holds nothing but punctuation, symbols
// and spaces.
func markupOnly(line string) bool {
	return strings.IndexFunc(line, func(r rune) bool {
		return !unicode.IsPunct(r) && !unicode.IsSymbol(r) && !unicode.IsSpace(r)
	}) < 0
}

// MatchRule returns the first rule that flags line as boilerplate.
func MatchRule(line string) (Rule, bool) {
	trimmed := strings.TrimSpace(line)
	for _, rule := range Rules {
		if rule.Match(trimmed) {
			return rule, true
		}
	}
	return Rule{}, false
}

// IsIgnorable reports whether line is UI chrome, legal text, a placeholder or
// otherwise cannot be a prompt or an option.
func IsIgnorable(line string) bool {
	_, ok := MatchRule(line)
	return ok
}

func isNavigation(line string) bool {
	return navigationRe.MatchString(line)
}

func isPlaceholder(line string) bool {
	return placeholderRe.MatchString(line)
}

func isRequiredLegend(line string) bool {
	return legendRe.MatchString(line)
}
