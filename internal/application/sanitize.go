package application

import (
	"html"
	"net/mail"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy strips every tag. A built Policy is safe for concurrent use.
var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText strips markup and control characters, collapses runs of
// whitespace to one space and trims the result.
func SanitizeText(s string) string {
	return strings.Join(strings.Fields(stripControl(stripTags(s), false)), " ")
}

// SanitizeTextarea is SanitizeText with line breaks preserved.
func SanitizeTextarea(s string) string {
	s = strings.ReplaceAll(stripTags(s), "\r\n", "\n")
	lines := strings.Split(stripControl(s, true), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// SanitizeEmail strips markup and every whitespace character.
func SanitizeEmail(s string) string {
	return strings.Join(strings.Fields(stripControl(stripTags(s), false)), "")
}

// IsValidEmail reports whether s is a bare local@domain.tld address that the
// mail transport will accept as a header value unchanged.
func IsValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}

	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	if strings.ContainsAny(domain, "[]") {
		return false
	}
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" {
			return false
		}
	}
	return true
}

func stripTags(s string) string {
	// The policy entity-encodes what it keeps; values are escaped again at render time.
	return html.UnescapeString(strictPolicy.Sanitize(s))
}

func stripControl(s string, keepNewlines bool) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' && keepNewlines {
			return r
		}
		if r == '\t' || r == '\n' || r == '\r' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
