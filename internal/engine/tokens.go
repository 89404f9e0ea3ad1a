package engine

import (
	"strings"
	"unicode"
)

// runesPerToken is how many word runes one token covers on average.
const runesPerToken = 4

// CountTokens estimates the token count of text. Words count one token per
// started group of four runes; every punctuation or symbol rune counts one
// token; whitespace is free. The estimate is deterministic so reports are
// reproducible across runs.
func CountTokens(text string) int {
	tokens := 0
	word := 0
	flush := func() {
		if word > 0 {
			tokens += (word + runesPerToken - 1) / runesPerToken
			word = 0
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			word++
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			tokens++
		}
	}
	flush()
	return tokens
}

// CountLines returns the number of lines in text. A final line without a
// trailing newline still counts.
func CountLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
