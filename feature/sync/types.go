package sync

import (
	"errors"

	"syncvision/core/warehouse"
	"syncvision/feature/catalog"
)

// MatchStrategy identifies which key linked an external record to a local
// catalog entry.
type MatchStrategy string

const (
	MatchExternalID MatchStrategy = "external_id"
	MatchSKU        MatchStrategy = "sku"
	MatchBarcode    MatchStrategy = "barcode"
	MatchNone       MatchStrategy = "none"
)

// MatchResult pairs an external record with at most one local catalog entry.
// Strategy is MatchNone when nothing matched; Local is nil in that case.
type MatchResult struct {
	Record   warehouse.ProductRecord
	Local    *catalog.Ref
	Strategy MatchStrategy
}

// Matched reports whether the record resolved to a local entry.
func (m MatchResult) Matched() bool {
	return m.Strategy != MatchNone
}

// DiscrepancyKind is the classification category of an anomaly.
type DiscrepancyKind string

const (
	KindLowStock    DiscrepancyKind = "low_stock"
	KindMissing     DiscrepancyKind = "missing"
	KindUnpublished DiscrepancyKind = "unpublished_candidate"
)

// Discrepancy is a classified anomaly attached to a sync run.
type Discrepancy struct {
	Kind       DiscrepancyKind
	ExternalID string
	SKU        string
	Barcode    string
	Brand      string
	Quantity   int
	// LocalID is set for discrepancies on matched pairs; zero for missing.
	LocalID uint
	// MissingFields names the empty local identifiers for unpublished candidates.
	MissingFields []string
}

// SessionStatus is the lifecycle state of a sync session.
type SessionStatus string

const (
	StatusRunning   SessionStatus = "running"
	StatusSucceeded SessionStatus = "succeeded"
	StatusFailed    SessionStatus = "failed"
	StatusAborted   SessionStatus = "aborted"
)

// Terminal reports whether the status is final.
func (s SessionStatus) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusAborted:
		return true
	default:
		return false
	}
}

// ErrSyncAlreadyRunning is returned when a run is triggered while another
// session holds the exclusivity lock. No second session is created.
var ErrSyncAlreadyRunning = errors.New("a sync session is already running")

// ErrSessionNotRunning is returned when finalizing or aborting a session
// that already reached a terminal status.
var ErrSessionNotRunning = errors.New("sync session is not running")

// ErrSessionNotFinished is returned when a report is requested for a session
// that has not reached a terminal status yet.
var ErrSessionNotFinished = errors.New("sync session has not finished")
