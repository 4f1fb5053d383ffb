// Package filetype maps file extensions onto the six fixed organize categories
// and their top-level directory names.
package filetype
