// Package gemini captions images with Google's Gemini models through the
// google.golang.org/genai SDK. It is an alternative to the Hugging Face
// captioner selected with caption.provider = "gemini".
package gemini
