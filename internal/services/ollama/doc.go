// Package ollama adapts a local Ollama server, reached through langchaingo,
// to the completion interface used by the label synthesizer.
package ollama
