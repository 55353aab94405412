// Package catalog provides the locally-owned inventory catalog store.
//
// It exposes the capability set the sync engine consumes: keyed lookups
// (external ID, SKU, barcode), an in-memory lookup index for full-run
// matching, the operator-maintained ignore list, and the idempotent
// write-back operations (bulk upsert, publish toggling).
//
// The engine treats catalog rows as read-mostly during a run: the resolver
// only reads Refs, and any writes implied by discrepancies are issued as
// discrete store calls outside the matching path.
//
// # Index
//
// BuildIndex loads the catalog once and builds three lookup maps keyed by
// normalized identifiers. Archived rows can be treated as locally absent via
// the includeArchived flag. IndexCache adds TTL caching with singleflight
// stampede protection for targeted lookups between runs.
package catalog
