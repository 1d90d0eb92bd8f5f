// Package preflight provides readiness checks for the filesystem paths
// and services tagsmith depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup and logs failures before serving.
//   - The CLI "tagsmith preflight" command displays the same checks so a
//     user can diagnose a misconfigured install without starting the daemon.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
