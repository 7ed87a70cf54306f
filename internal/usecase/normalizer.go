package usecase

import (
	"regexp"
	"strings"
)

// Package-level compiled regex patterns for performance
var (
	// Matches a single leading list marker: "-", "*", or "1." with trailing whitespace
	listMarkerPattern = regexp.MustCompile(`^(-\s*|\*\s*|\d+\.\s*)`)
)

// boilerplatePrefixes are conversational preambles and markdown noise the AI
// tends to wrap around a generated shopping list. Lines starting with any of
// these (case-insensitive) are dropped.
var boilerplatePrefixes = []string{
	"#",
	"here is your",
	"here is the",
	"sure, here is",
	"sure thing",
	"i have created",
	"based on your",
	"i hope this helps",
	"shopping list:",
	"```",
}

// CleanShoppingList turns free-form AI-generated text into a plain
// one-item-per-line shopping list: list markers stripped, empty lines and
// boilerplate dropped. Always returns a string, possibly empty.
func CleanShoppingList(raw string) string {
	lines := strings.Split(strings.TrimSpace(raw), "\n")

	var cleaned []string
	for _, line := range lines {
		line = StripListMarker(line)
		if line == "" {
			continue
		}
		if isBoilerplate(line) {
			continue
		}
		cleaned = append(cleaned, line)
	}

	return strings.Join(cleaned, "\n")
}

// StripListMarker trims a line and removes one leading "-", "*" or "N."
// marker. Shared with the reconciler, which normalizes the user's original
// list the same way.
func StripListMarker(line string) string {
	line = strings.TrimSpace(line)
	line = listMarkerPattern.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

func isBoilerplate(line string) bool {
	lower := strings.ToLower(line)
	for _, prefix := range boilerplatePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
