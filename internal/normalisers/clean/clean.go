// Package clean normalises extracted text before chunking.
package clean

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Text collapses line breaks into spaces and trims the result. With segment
// set, the text is additionally split on Unicode word boundaries and the
// non-space words are rejoined with single spaces, which separates words in
// scripts written without spaces.
func Text(text string, segment bool) string {
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.TrimSpace(text)

	if !segment || text == "" {
		return text
	}
	return strings.Join(Words(text), " ")
}

// Words returns the word-boundary segments of text, excluding whitespace.
func Words(text string) []string {
	var words []string
	state := -1
	for len(text) > 0 {
		var word string
		word, text, state = uniseg.FirstWordInString(text, state)
		if strings.TrimSpace(word) == "" {
			continue
		}
		words = append(words, word)
	}
	return words
}
