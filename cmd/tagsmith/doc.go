// Package main hosts the tagsmith CLI entrypoint and command graph.
//
// The Cobra-based command tree reads and edits the tag settings sheet
// directly, shares the daemon's file lock for safe concurrent writes, and
// surfaces the audit history and preflight checks. It centralizes
// configuration resolution so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
