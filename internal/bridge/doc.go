// Package bridge converts legacy binary office documents (.doc, .xls) into
// their XML successors by driving a headless LibreOffice process.
//
// A Bridge hands out at most one Session at a time: the session holds an
// in-process mutex and a cross-process flock for its whole lifetime, owns a
// private temp directory and user profile, and tracks the office process it
// spawned. Session.Close kills a process that is still running, removes the
// temp directory, and releases both locks. WithSession scopes a session to a
// callback so the release happens on every exit path, including panics.
package bridge
