// Package contact validates and extracts visitor email addresses.
package contact

import (
	"regexp"
	"strings"
)

// emailPattern is a structural check: local part, '@', and a dotted domain
// whose labels are 1-63 characters and do not start or end with '-'.
var emailPattern = regexp.MustCompile(
	"^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@" +
		`[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?` +
		`(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)

// spokenEmailPattern finds an email-looking token inside free text.
var spokenEmailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// ValidEmail reports whether s is a syntactically valid email address with
// a top-level domain of at least two characters. It does not check
// deliverability.
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || !emailPattern.MatchString(s) {
		return false
	}
	tld := s[strings.LastIndexByte(s, '.')+1:]
	return len(tld) >= 2
}

// Normalize trims and lower-cases an email address.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ExtractEmail returns the first valid email address found in texts,
// normalized, or "" when none of them contains one. Matches that fail
// ValidEmail are skipped.
func ExtractEmail(texts []string) string {
	for _, t := range texts {
		for _, m := range spokenEmailPattern.FindAllString(t, -1) {
			if ValidEmail(m) {
				return Normalize(m)
			}
		}
	}
	return ""
}
