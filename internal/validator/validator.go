package validator

import (
	"regexp"
	"time"
	"unicode/utf8"
)

// EmailRX is a regular expression pattern to validate the format of email addresses.
// It checks that the email conforms to the standard format with allowed characters and structure.
//
// AlphanumericRX matches strings made up exclusively of ASCII letters and digits.
var (
	EmailRX        = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+\\/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")
	AlphanumericRX = regexp.MustCompile("^[a-zA-Z0-9]+$")
)

// dateLayouts are the layouts accepted by ParseDate, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Matches checks if a value matches a regular expression pattern.
// It returns true if the value matches the regex.
func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}

// MinRunes checks if a value is at least n characters long, counted in runes.
func MinRunes(value string, n int) bool {
	return utf8.RuneCountInString(value) >= n
}

// ParseDate parses an ISO-style date string. It accepts full RFC 3339 timestamps
// as well as date-only values, and reports an error for anything unparseable
// instead of panicking.
func ParseDate(value string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		t, err = time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// ValidDate returns true if the value parses as a date under ParseDate.
func ValidDate(value string) bool {
	_, err := ParseDate(value)
	return err == nil
}

// Unique checks if all values in a slice of strings are unique.
// It returns true if all values are unique.
func Unique(values []string) bool {
	uniqueValues := make(map[string]bool)
	for _, value := range values {
		uniqueValues[value] = true
	}
	return len(values) == len(uniqueValues)
}
