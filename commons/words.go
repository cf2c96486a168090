package commons

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Words splits text into alignment tokens.
//
// Tokens follow the Unicode word boundaries of UAX #29, except that runs of
// non-word characters are split into single characters and a trailing "ing"
// is split off longer words, so that "break" and "breaking" share a token.
// Concatenating the tokens yields text.
func Words(text string) []string {
	var words []string
	state := -1
	for len(text) > 0 {
		var segment string
		segment, text, state = uniseg.FirstWordInString(text, state)

		switch {
		case !isWord(segment):
			for _, r := range segment {
				words = append(words, string(r))
			}
		case len(segment) > len("ing")+1 && strings.HasSuffix(segment, "ing"):
			words = append(words, segment[:len(segment)-3], "ing")
		default:
			words = append(words, segment)
		}
	}
	return words
}

func isWord(segment string) bool {
	for len(segment) > 0 {
		r, size := utf8.DecodeRuneInString(segment)
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
			return true
		}
		segment = segment[size:]
	}
	return false
}
