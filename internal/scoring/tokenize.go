package scoring

import (
	"strings"
	"unicode"
)

// Tokenize lowercases the input, replaces punctuation with spaces, and splits
// on whitespace. BLEU and the term-frequency cosine share this tokenizer so
// their scores stay comparable.
func Tokenize(s string) []string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}
