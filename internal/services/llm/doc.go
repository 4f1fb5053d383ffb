// Package llm provides an OpenAI-compatible chat completion client used to
// turn extracted file content into short topic labels.
//
// The default endpoint is Groq's chat completions API with the
// llama3-8b-8192 model. Any provider that speaks the same schema can be
// selected through base_url and model.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send a system instruction and user content with a token
// budget, receive the trimmed completion text.
//
// # Retry Behaviour
//
// A single attempt is made by default. When WithRetryMaxAttempts raises the
// limit, the client retries on HTTP 408/429/5xx errors, empty completions and
// network timeouts with exponential backoff (base 1s, max 10s). Retry-After
// headers are honoured. Context cancellation aborts retries immediately.
package llm
