// Package tagsheet models the tag settings CSV: the header, the per-tag
// rows, and the __default__ sentinel row that supplies fallback values.
//
// The sheet is read and written verbatim. Columns this engine does not
// interpret survive a rewrite unchanged, as do placeholder rows and rows
// whose cells fail to parse. A malformed cell never aborts a load; the
// field simply resolves to absent and falls back to the default row.
//
// Tag names are case-preserving for display and normalized (trim +
// Unicode lowercase) for lookup. Duplicate normalized names merge
// last-wins.
package tagsheet
