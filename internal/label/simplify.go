package label

import (
	"strings"

	"fastfox/internal/textutil"
)

// Placeholder is the label used when no usable word exists.
const Placeholder = "Untitled"

// genericNouns echo the prompt vocabulary rather than the file's topic.
var genericNouns = map[string]struct{}{
	"document":    {},
	"documents":   {},
	"topic":       {},
	"topics":      {},
	"summary":     {},
	"summaries":   {},
	"text":        {},
	"texts":       {},
	"file":        {},
	"files":       {},
	"word":        {},
	"words":       {},
	"column":      {},
	"columns":     {},
	"name":        {},
	"names":       {},
	"data":        {},
	"image":       {},
	"images":      {},
	"picture":     {},
	"pictures":    {},
	"photo":       {},
	"photos":      {},
	"photograph":  {},
	"spreadsheet": {},
}

type candidate struct {
	text  string
	first int
}

// pickNoun returns the longest noun in tokens, preferring the earliest on
// equal length. Generic nouns only win when nothing else is available.
func pickNoun(tokens []Token) (string, bool) {
	seen := make(map[string]struct{})
	var specific, generic []candidate
	for i, tok := range tokens {
		if !isNounTag(tok.Tag) {
			continue
		}
		if _, dup := seen[tok.Text]; dup {
			continue
		}
		seen[tok.Text] = struct{}{}
		c := candidate{text: tok.Text, first: i}
		if _, ok := genericNouns[strings.ToLower(tok.Text)]; ok {
			generic = append(generic, c)
			continue
		}
		specific = append(specific, c)
	}
	pool := specific
	if len(pool) == 0 {
		pool = generic
	}
	if len(pool) == 0 {
		return "", false
	}
	best := pool[0]
	for _, c := range pool[1:] {
		if runeLen(c.text) > runeLen(best.text) {
			best = c
		}
	}
	return best.text, true
}

// chooseWord applies the noun ranking with the first-token fallback.
func chooseWord(tokens []Token) string {
	if word, ok := pickNoun(tokens); ok {
		return word
	}
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0].Text
}

// cleanWord strips everything but ASCII letters and digits and drops a
// trailing lowercase "s" from words longer than three characters.
func cleanWord(word string) string {
	word = textutil.AlphanumericASCII(word)
	if len(word) > 3 && strings.HasSuffix(word, "s") {
		word = word[:len(word)-1]
	}
	return word
}

// Sanitize makes label safe to use as a single directory name of at most
// maxChars runes. It never returns an empty string.
func Sanitize(label string, maxChars int) string {
	clean := textutil.SanitizeFolderName(label, maxChars)
	if strings.Trim(clean, ".") == "" {
		return Placeholder
	}
	return clean
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	return textutil.Truncate(s, n)
}

func runeLen(s string) int {
	return len([]rune(s))
}
