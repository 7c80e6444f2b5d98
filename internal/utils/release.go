package utils

import (
	"regexp"
	"strconv"
)

var yearRegex = regexp.MustCompile(`\b(1[89]\d{2}|2\d{3})\b`)

// ExtractYear extracts a 4-digit year from a release date string.
// Returns nil if no year is found.
// Matches "2009-07-15", "2009", "July 2009", etc.
func ExtractYear(date string) *int {
	matches := yearRegex.FindStringSubmatch(date)
	if len(matches) > 1 {
		year, err := strconv.Atoi(matches[1])
		if err == nil {
			return &year
		}
	}
	return nil
}
