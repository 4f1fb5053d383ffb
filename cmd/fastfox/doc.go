// Package main hosts the fastfox CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration, builds the completion and
// captioning collaborators, and hands a directory to the organizer. It also
// exposes the history store (list and forget) and configuration scaffolding.
//
// Keep this package thin: behavior belongs in the internal packages and is
// surfaced here through commands and flags.
package main
