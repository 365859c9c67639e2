package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	ellipsis    = "…"
	punctuation = ",.;:!? "
)

var multipleSpacesRegex = regexp.MustCompile(`\s+`)

// collapseSpaces trims text and replaces every whitespace run with a single space.
func collapseSpaces(text string) string {
	return strings.TrimSpace(multipleSpacesRegex.ReplaceAllString(text, " "))
}

// Snippet shortens text to at most maxWords words and maxChars runes,
// counting the ellipsis that marks a cut. Text within both limits is only
// whitespace-collapsed. An ellipsis the source already ends with is dropped,
// so only a cut made here ends in one.
func Snippet(text string, maxWords, maxChars int) string {
	words := strings.Fields(trimEllipsis(collapseSpaces(text)))
	truncated := false

	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
		truncated = true
	}

	snippet := strings.Join(words, " ")

	if maxChars > 0 && utf8.RuneCountInString(snippet) > maxChars {
		// Leave room for the ellipsis.
		snippet = truncateAtWordBoundary(snippet, maxChars-1)
		truncated = true
	}

	if !truncated {
		return snippet
	}

	return strings.TrimRight(snippet, punctuation) + ellipsis
}

var sourceEllipses = []string{"[…]", "[...]", ellipsis, "..."}

// trimEllipsis removes trailing "read more" markers such as "…" and "[...]".
func trimEllipsis(text string) string {
	for {
		trimmed := text

		for _, suffix := range sourceEllipses {
			trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, suffix))
		}

		if trimmed == text {
			return text
		}

		text = trimmed
	}
}

// truncateAtWordBoundary returns the longest prefix of text that fits into
// limit runes and does not end in the middle of a word. A single word longer
// than limit is cut at limit.
func truncateAtWordBoundary(text string, limit int) string {
	if limit <= 0 {
		return ""
	}

	if utf8.RuneCountInString(text) <= limit {
		return text
	}

	lastWordEnd := 0
	currentCount := 0

	for i, r := range text {
		if currentCount == limit {
			// The next rune starts a new word, so the whole prefix fits.
			if unicode.IsSpace(r) {
				return text[:i]
			}

			if lastWordEnd > 0 {
				return text[:lastWordEnd]
			}

			return text[:i]
		}

		if unicode.IsSpace(r) {
			lastWordEnd = i
		}

		currentCount++
	}

	return text
}
