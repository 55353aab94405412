// Package sync implements warehouse catalog reconciliation: it streams the
// external product feed, normalizes each record, resolves it against the
// local catalog index, classifies discrepancies (low stock, missing,
// unpublished candidates) and records everything in an auditable session
// ledger. At most one session runs at a time.
package sync
