// Package ledger keeps a durable history of finished job runs in SQLite.
//
// The status store only holds the latest record per job; the ledger is the
// append-only audit trail behind it, answering "what ran, when, and how did
// it end" across restarts and re-runs of the same identifier.
package ledger
