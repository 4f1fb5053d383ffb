// Package router places classified files under <root>/<category>/<label>.
//
// Router creates label directories on demand and moves files without ever
// overwriting an existing destination: a same-name file is either renamed to
// the next free "name-N.ext" slot or rejected with ErrCollision, depending on
// the configured policy. Directory creation and moves are serialized per
// destination directory, so concurrent callers never race on one label.
//
// Moves use renameat2(RENAME_NOREPLACE) on Linux and a checked rename
// elsewhere. Cross-device moves fall back to a hash-verified copy followed by
// removal of the source; failures there carry ErrCrossDevice.
package router
