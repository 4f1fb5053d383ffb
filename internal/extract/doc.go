// Package extract turns a classified file into the short piece of text the
// label synthesizer prompts with.
//
// Each category has its own reader: PDF page text, the header row of a
// spreadsheet or CSV file, the paragraphs of a word-processing document, and a
// caption for images. Legacy .doc and .xls files are first converted through
// the office bridge. Some inputs carry a fixed label instead of text, such as
// a CSV file whose header row cannot be decoded.
package extract
