// Package caption talks to the Hugging Face inference API to caption images.
//
// The image bytes are base64-encoded into an {"inputs":{"image":...}} payload
// and POSTed to <base_url><model>. A successful reply is a JSON list whose
// first element carries generated_text. Any other shape, including the
// {"error": "..."} payload returned while a model is loading, is an error.
package caption
