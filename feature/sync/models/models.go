package models

import "time"

// SyncSession is the persisted audit record of one reconciliation run.
// Rows are created when a run starts, mutated only by the owning
// orchestrator, and never deleted by the engine.
type SyncSession struct {
	ID         string     `gorm:"column:id;primaryKey" json:"id"`
	StartedAt  time.Time  `gorm:"column:started_at" json:"started_at"`
	FinishedAt *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
	Status     string     `gorm:"column:status;index" json:"status"`

	// RecordsSeen counts every record consumed from the feed, including
	// ones that failed normalization.
	RecordsSeen int `gorm:"column:records_seen" json:"records_seen"`
	// RecordsMatched counts records resolved to a local catalog entry.
	RecordsMatched int `gorm:"column:records_matched" json:"records_matched"`
	// RecordsMissing counts records that did not resolve, so
	// RecordsMatched + RecordsMissing == RecordsSeen holds for every
	// finalized session.
	RecordsMissing int `gorm:"column:records_missing" json:"records_missing"`

	// Reported discrepancy counts per kind. MissingCount can be lower than
	// RecordsMissing when the prefix filter or ignore list suppresses
	// individual reports.
	LowStockCount    int `gorm:"column:low_stock_count" json:"low_stock_count"`
	MissingCount     int `gorm:"column:missing_count" json:"missing_count"`
	UnpublishedCount int `gorm:"column:unpublished_count" json:"unpublished_count"`

	ErrorCount int `gorm:"column:error_count" json:"error_count"`

	// Note carries the failure or abort reason for non-succeeded sessions.
	Note string `gorm:"column:note" json:"note,omitempty"`
}

// TableName overrides the table name for sync sessions.
func (SyncSession) TableName() string {
	return "sync_sessions"
}

// SyncDiscrepancy is one classified anomaly attached to a session.
type SyncDiscrepancy struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SessionID string    `gorm:"column:session_id;index" json:"session_id"`
	Kind      string    `gorm:"column:kind;index" json:"kind"`
	LocalID   uint      `gorm:"column:local_id" json:"local_id,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`

	ExternalID    string `gorm:"column:external_id" json:"external_id"`
	SKU           string `gorm:"column:sku" json:"sku"`
	Barcode       string `gorm:"column:barcode" json:"barcode,omitempty"`
	Brand         string `gorm:"column:brand" json:"brand,omitempty"`
	Quantity      int    `gorm:"column:quantity" json:"quantity"`
	MissingFields string `gorm:"column:missing_fields" json:"missing_fields,omitempty"`
}

// TableName overrides the table name for sync discrepancies.
func (SyncDiscrepancy) TableName() string {
	return "sync_discrepancies"
}

// SyncError is one recorded error line of a session's audit trail.
type SyncError struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SessionID string    `gorm:"column:session_id;index" json:"session_id"`
	RecordRef string    `gorm:"column:record_ref" json:"record_ref,omitempty"`
	Message   string    `gorm:"column:message" json:"message"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides the table name for sync errors.
func (SyncError) TableName() string {
	return "sync_errors"
}
