// Package export orchestrates a complete export run: the silent readiness
// check, save-plan computation, export-folder acquisition, and the sequential
// per-node generate-and-write loop with per-node result persistence.
//
// Node failures are isolated. A node that fails to generate or write is
// recorded as failed and the loop continues; a later retry replays only the
// nodes that have not succeeded, against the plan snapshotted with the run.
package export
