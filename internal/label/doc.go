// Package label derives a folder-safe topic word for a file.
//
// The Synthesizer builds a per-category prompt from extracted content, asks a
// completion collaborator for a topic, and reduces the reply to one word: the
// reply is part-of-speech tagged, the longest noun wins (earliest on ties),
// punctuation is stripped, a trailing plural "s" is dropped, and the result is
// sanitized for use as a directory name. Image captions skip the completion
// call and go straight to the reduction.
package label
