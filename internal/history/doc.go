// Package history keeps an audit trail of tag settings changes in a local
// SQLite database. Every write operation gets a UUID, and each cell change
// it applied becomes one row, so "what changed, when, and together with
// what" stays answerable after the CSV has moved on.
package history
