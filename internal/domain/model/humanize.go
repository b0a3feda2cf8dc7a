package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Humanize turns an identifier such as "to_email" into "To Email". Existing
// upper-case letters are kept, so "f21_addressLine1" becomes "F21 AddressLine1".
func Humanize(id string) string {
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Title(language.English, cases.NoLower).String(strings.ReplaceAll(id, "_", " "))
}
