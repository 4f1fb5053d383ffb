// Package history persists the conversation history consulted for
// contextual lookups.
//
// Each entry records a command type (command, code, or organize), the query
// that was handled, and the response. Context returns the most recent entries
// of one type in chronological order, and Forget clears either everything or
// a single command type. The store is an explicit object backed by SQLite and
// is passed to whichever component needs it.
package history
