// Package state persists listforge's local state in SQLite: the saved export
// folder and the export-run history with per-file write results.
//
// The saved folder is a single-slot record; storing a new folder replaces the
// previous one and clearing it is an explicit user action. Run history keeps
// the snapshotted save plan and per-node results keyed by their stable plan
// keys so a retry, possibly in a later session, re-attempts exactly the
// failed subset.
//
// The database is working state, not an archive. Schema changes bump the
// version in schema.go; users clear the state directory to adopt it.
package state
