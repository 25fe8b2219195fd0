package auth

import (
	"strings"
	"unicode"
)

// ValidateEmail reports whether s, trimmed, looks like local@domain.tld:
// no whitespace, exactly one @, and a dot with characters on both sides
// somewhere after it.
func ValidateEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) {
			return false
		}
	}
	if strings.Count(s, "@") != 1 {
		return false
	}
	at := strings.Index(s, "@")
	local, domain := s[:at], s[at+1:]
	if local == "" || domain == "" {
		return false
	}
	dot := strings.LastIndex(domain, ".")
	return dot >= 1 && dot < len(domain)-1
}

// ValidatePassword requires at least 6 characters containing both an ASCII
// letter and a digit.
func ValidatePassword(s string) bool {
	if len(s) < 6 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
