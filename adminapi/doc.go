// Package adminapi is the thin façade the CLI and a future read-only
// dashboard call into: one method per operation, each translating
// directly to a single Store or Supervisor call. No worker-loop logic
// lives here.
package adminapi
