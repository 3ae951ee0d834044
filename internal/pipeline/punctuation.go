package pipeline

import (
	"strings"
	"unicode/utf8"
)

// sentenceTerminal is the set of runes that close a sentence.
var sentenceTerminal = map[rune]struct{}{
	'.': {}, '!': {}, '?': {},
}

// isSentenceBoundary reports whether text, ignoring trailing whitespace, ends
// with sentence-terminal punctuation.
func isSentenceBoundary(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	lastRune, _ := utf8.DecodeLastRuneInString(text)
	_, ok := sentenceTerminal[lastRune]
	return ok
}
