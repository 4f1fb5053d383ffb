// Package services defines shared utilities consumed by the organize pipeline
// and its remote collaborators.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, file names, and stage names for
//     logging.
//   - Structured error markers plus the Wrap helper that give every per-file
//     failure a taxonomy (extraction, synthesis, route) the walker can report.
//
// Subpackages hold the remote collaborators: the OpenAI-compatible completion
// client (llm), the langchaingo-backed Ollama completer (ollama), and the image
// captioners (caption, gemini).
package services
