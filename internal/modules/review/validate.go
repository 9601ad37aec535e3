package review

import (
	"regexp"
	"strings"
)

// defaultDenyWords is the built-in denylist; site options can extend it.
// Matching is whole-word and case-insensitive, so "classic" is fine while
// "ass" on its own is not.
var defaultDenyWords = []string{
	"spam",
	"scam",
	"viagra",
	"casino",
	"fuck",
	"shit",
	"ass",
	"asshole",
	"bitch",
	"bastard",
	"dick",
}

var namePattern = regexp.MustCompile(`^[\p{L} .'-]+$`)

// The built-in patterns are compiled once; only the site-option extras are
// compiled per call.
var defaultDenyPatterns = compileDenyPatterns(defaultDenyWords)

func compileDenyPatterns(words []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(words))
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
		if err != nil {
			continue
		}
		patterns = append(patterns, pattern)
	}
	return patterns
}

// containsDenyWord reports whether any denylisted word appears as a whole
// word in the text.
func containsDenyWord(text string, extraWords []string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	for _, pattern := range defaultDenyPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	for _, pattern := range compileDenyPatterns(extraWords) {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// validName accepts letters (any script), spaces, apostrophes, hyphens, and
// periods.
func validName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return namePattern.MatchString(name)
}

// validRating accepts integers 1 through 5.
func validRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

// deriveTitle builds the display title from role/company.
func deriveTitle(role, company string) string {
	role = strings.TrimSpace(role)
	company = strings.TrimSpace(company)
	switch {
	case role != "" && company != "":
		return role + " at " + company
	case role != "":
		return role
	default:
		return company
	}
}
