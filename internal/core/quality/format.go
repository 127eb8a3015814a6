package quality

import (
	"regexp"
	"strings"
	"unicode"
)

// DatePresent is the accepted end date of a current role.
const DatePresent = "Present"

var canonicalDate = regexp.MustCompile(`^[A-Z][a-z]{2}-\d{2}-\d{4}$`)

// canonicalDegrees accepts B.S./M.A., M.B.A./B.B.A., Ph.D., D.Phil., M.D./J.D.
// and bare abbreviations such as MBA or MBBS.
var canonicalDegrees = []*regexp.Regexp{
	regexp.MustCompile(`^[BMD]\.[A-Z]\.$`),
	regexp.MustCompile(`^[BMD]\.[A-Z]\.[A-Z]\.$`),
	regexp.MustCompile(`^Ph\.D\.$`),
	regexp.MustCompile(`^D\.Phil\.$`),
	regexp.MustCompile(`^[MJ]\.D\.$`),
	regexp.MustCompile(`^[A-Z]{2,4}$`),
}

// degreeSpellings maps a folded spelling to its canonical form.
var degreeSpellings = map[string]string{
	"ba":    "B.A.",
	"bs":    "B.S.",
	"bsc":   "B.S.",
	"bba":   "BBA",
	"beng":  "B.E.",
	"be":    "B.E.",
	"ma":    "M.A.",
	"ms":    "M.S.",
	"msc":   "M.S.",
	"mba":   "MBA",
	"mfe":   "MFE",
	"meng":  "M.E.",
	"phd":   "Ph.D.",
	"dphil": "D.Phil.",
	"md":    "M.D.",
	"jd":    "J.D.",
	"llm":   "LLM",
	"cfa":   "CFA",
}

// IsCanonicalDate reports whether s is MMM-DD-YYYY, "Present" or empty.
func IsCanonicalDate(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || s == DatePresent {
		return true
	}
	return canonicalDate.MatchString(s)
}

// IsCanonicalDegree reports whether degree has a canonical spelling.
func IsCanonicalDegree(degree string) bool {
	degree = strings.TrimSpace(degree)
	for _, re := range canonicalDegrees {
		if re.MatchString(degree) {
			return true
		}
	}
	return false
}

// NormalizeDegree returns the canonical spelling of degree.
// Unknown spellings are returned trimmed but otherwise unchanged.
func NormalizeDegree(degree string) string {
	trimmed := strings.TrimSpace(degree)
	if IsCanonicalDegree(trimmed) {
		return trimmed
	}
	if canonical, ok := degreeSpellings[foldDegree(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

func foldDegree(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// IsTitleCase reports whether every word of name starts with a capital
// letter and no multi-letter word is all capitals.
func IsTitleCase(name string) bool {
	words := strings.Fields(name)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		runes := []rune(w)
		if !unicode.IsUpper(runes[0]) {
			return false
		}
		if isAllUpper(runes) {
			return false
		}
	}
	return true
}

// isAllUpper reports whether runes hold two or more letters, none lowercase.
// Initials such as "Q." pass.
func isAllUpper(runes []rune) bool {
	letters := 0
	for _, r := range runes {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters > 1
}
