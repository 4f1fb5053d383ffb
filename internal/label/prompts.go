package label

import "fastfox/internal/filetype"

type prompt struct {
	system string
	user   string
}

var prompts = map[filetype.Category]prompt{
	filetype.PDF: {
		system: "You are a helpful assistant that summarizes documents and provides a single-word topic.",
		user:   "Summarize this text and provide a single-word topic: ",
	},
	filetype.Document: {
		system: "You are a helpful assistant that summarizes documents and provides a single-word topic.",
		user:   "Summarize this text and provide a single-word topic: ",
	},
	filetype.Excel: {
		system: "You are a helpful assistant that analyzes Excel files and provides a single-word topic.",
		user:   "Analyze these Excel column names and provide a single-word topic: ",
	},
	filetype.CSV: {
		system: "You are a helpful assistant that analyzes CSV files and provides a single-word topic.",
		user:   "Analyze these CSV column names and provide a single-word topic: ",
	},
}

// buildPrompt returns the system and user prompts for category. Text bodies are
// cut to limit runes; column lists are sent whole.
func buildPrompt(category filetype.Category, content string, limit int) (string, string, bool) {
	p, ok := prompts[category]
	if !ok {
		return "", "", false
	}
	if category == filetype.PDF || category == filetype.Document {
		content = truncateRunes(content, limit)
	}
	return p.system, p.user + content, true
}
