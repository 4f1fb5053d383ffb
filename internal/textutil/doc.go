// Package textutil provides the small string helpers shared by the label
// synthesizer and the content extractors: folder-name sanitization,
// rune-safe truncation, and ASCII alphanumeric filtering.
package textutil
