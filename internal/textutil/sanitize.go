package textutil

import "strings"

// folderNameReplacer removes characters that are reserved in path segments on
// common filesystems, plus line breaks.
var folderNameReplacer = strings.NewReplacer(
	"<", "",
	">", "",
	":", "",
	"\"", "",
	"/", "",
	"\\", "",
	"|", "",
	"?", "",
	"*", "",
	"\n", "",
	"\r", "",
)

// SanitizeFolderName removes reserved characters and newlines, trims
// surrounding whitespace, and truncates the result to maxRunes runes.
// A non-positive maxRunes disables truncation. The result may be empty.
func SanitizeFolderName(name string, maxRunes int) string {
	cleaned := strings.TrimSpace(folderNameReplacer.Replace(name))
	if maxRunes > 0 {
		cleaned = strings.TrimSpace(Truncate(cleaned, maxRunes))
	}
	return cleaned
}

// Truncate returns the first n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// AlphanumericASCII drops every rune outside [A-Za-z0-9].
func AlphanumericASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}
