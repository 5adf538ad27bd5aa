package security

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// MaxSearchQueryLength caps user-supplied search input.
const MaxSearchQueryLength = 100

var (
	errQueryTooLong = errors.New("search query too long")
	errQueryInvalid = errors.New("search query contains invalid characters")
)

// suspiciousPatterns flag input that looks like injection rather than a
// name or email fragment.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(union|select|insert|update|delete|drop|create|alter|exec|execute)`),
	regexp.MustCompile(`(?i)(or|and)\s+\d+\s*=\s*\d+`),
	regexp.MustCompile(`(?i)(or|and)\s+['"].*['"]\s*=\s*['"].*['"]`),
	regexp.MustCompile(`--|#|/\*|\*/`),
	regexp.MustCompile(`(?i)(waitfor|delay|benchmark|sleep)`),
	regexp.MustCompile(`(?i)(<script|</script|javascript:|onload=|onerror=)`),
}

// ValidateSearchQuery rejects search input that is overlong, contains
// injection-like patterns, or characters outside the name/email alphabet.
// The empty query is valid and matches everything.
func ValidateSearchQuery(query string) (string, error) {
	if query == "" {
		return "", nil
	}
	if len(query) > MaxSearchQueryLength {
		return "", errQueryTooLong
	}

	query = strings.TrimSpace(query)

	for _, pattern := range suspiciousPatterns {
		if pattern.MatchString(query) {
			return "", errQueryInvalid
		}
	}

	if strings.IndexFunc(query, func(r rune) bool { return !isSearchRune(r) }) >= 0 {
		return "", errQueryInvalid
	}

	return query, nil
}

func isSearchRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsNumber(r) {
		return true
	}
	switch r {
	case ' ', '-', '_', '.', '@', '+':
		return true
	}
	return false
}

// SanitizeSearchString escapes LIKE wildcards in a validated query.
func SanitizeSearchString(query string) string {
	query = strings.ReplaceAll(query, "%", "\\%")
	query = strings.ReplaceAll(query, "_", "\\_")
	return query
}
