// Package tagstore is the stateful façade over the tag settings sheet.
//
// The Store lazily loads the CSV into an immutable snapshot and serves
// all reads from it. Rebuilds swap a fresh snapshot in atomically, so
// in-flight readers keep the version they started with. Writes are
// read-modify-write: the store re-reads the sheet under a cross-process
// file lock, applies the patch, rewrites the file through a temp-file
// rename, and installs the new snapshot. A crashed or concurrent reader
// can never observe a partially written source.
//
// Reads degrade rather than fail: a missing or headerless source yields
// empty results with a structured warning, and resolving any tag still
// produces defaults-only settings. Writes surface ErrPersist (and
// ErrSourceUnavailable when the source itself is gone) because they
// represent a loss of durability.
package tagstore
