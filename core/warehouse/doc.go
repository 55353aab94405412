// Package warehouse provides the client and normalizer for the external
// warehouse catalog API.
//
// # Client
//
// The Client interface covers the read-only contract the sync engine consumes:
// the paginated product feed, single-product lookup, stock levels, and brands.
// The HTTP implementation paginates internally, applies a per-request timeout,
// and retries transient failures (connection errors, 429, 5xx) with exponential
// backoff up to the configured budget. Auth rejections and malformed top-level
// responses are permanent: they fail the fetch immediately and are marked with
// ErrPermanent so the orchestrator can abort the session.
//
// Authentication is pluggable (API key header, bearer token, basic auth, or
// custom headers); the engine never inspects which method is configured.
//
// # Normalizer
//
// Normalize converts raw feed payloads into canonical ProductRecords, applying
// the identifier sanitation rules the warehouse feed requires (placeholder
// values like "none"/"N/A" are treated as empty; matching keys keep
// alphanumerics only, uppercased). Malformed records yield a RecordError and
// never abort the surrounding batch.
package warehouse
