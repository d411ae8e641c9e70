package helpers

import (
	"strings"
	"unicode"
)

// CollapseSpaces trims s and folds every run of whitespace into one space
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// DigitsOnly drops every rune that is not a decimal digit
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// FirstToken returns the first whitespace-delimited word of s
func FirstToken(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
