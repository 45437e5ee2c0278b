package utils

import "github.com/microcosm-cc/bluemonday"

// Strict policy: profile names, goals, and exercise titles are plain text.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips any HTML from user-supplied display text.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
