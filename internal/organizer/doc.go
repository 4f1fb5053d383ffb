// Package organizer walks a directory and files each of its entries under a
// topic folder.
//
// A run stats the root, creates the six category directories, and then handles
// every regular file in name order: classify by extension, extract content,
// synthesize a label, and hand the decision to the router. One file's failure
// is logged and recorded in the Report and never stops the run; only a missing
// root is fatal. Runs on the same root are serialized with a lock file kept in
// the state directory, and Watch keeps processing files as they settle.
package organizer
