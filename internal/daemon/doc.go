// Package daemon runs the long-lived tagsmith service: it holds the
// settings store open, serves the HTTP API, records the audit history,
// and uses a lock file to keep a single instance per machine.
package daemon
