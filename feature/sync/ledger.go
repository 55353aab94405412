package sync

import (
	"context"
	"fmt"
	"strings"
	gosync "sync"
	"time"

	"syncvision/feature/sync/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger owns the lifecycle of sync sessions: creation under the exclusivity
// lock, progress accumulation, terminal finalization, and the permanent audit
// trail. Terminal sessions are immutable and never deleted by the engine.
//
// Counter updates go through a single-writer path: the orchestrator is the
// only caller, and the in-process mutex keeps Begin's check-and-create atomic
// against concurrent triggers.
type Ledger struct {
	db *gorm.DB
	mu gosync.Mutex
}

// NewLedger creates a ledger on the given database.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// AutoMigrate creates or updates the ledger tables.
func (l *Ledger) AutoMigrate() error {
	return l.db.AutoMigrate(&models.SyncSession{}, &models.SyncDiscrepancy{}, &models.SyncError{})
}

// Begin creates a new RUNNING session, acquiring the exclusivity lock.
// If any session is already RUNNING it returns ErrSyncAlreadyRunning and
// creates nothing: triggers are attempt-and-fail, never queued.
func (l *Ledger) Begin(ctx context.Context) (*models.SyncSession, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	session := &models.SyncSession{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Status:    string(StatusRunning),
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var running int64
		if err := tx.Model(&models.SyncSession{}).
			Where("status = ?", string(StatusRunning)).
			Count(&running).Error; err != nil {
			return fmt.Errorf("failed to check running sessions: %w", err)
		}
		if running > 0 {
			return ErrSyncAlreadyRunning
		}
		return tx.Create(session).Error
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// BatchResult is the accumulated outcome of one processed batch.
type BatchResult struct {
	Seen          int
	Matched       int
	Missing       int
	Discrepancies []Discrepancy
	Errors        []RecordIssue
}

// RecordIssue is a record-level error captured during a batch.
type RecordIssue struct {
	RecordRef string
	Message   string
}

// RecordBatch appends one batch's outcome to the session: counters increment
// monotonically and discrepancy/error rows are inserted, all in one
// transaction.
func (l *Ledger) RecordBatch(ctx context.Context, sessionID string, batch BatchResult) error {
	now := time.Now().UTC()

	var kindCounts = map[DiscrepancyKind]int{}
	rows := make([]models.SyncDiscrepancy, 0, len(batch.Discrepancies))
	for _, d := range batch.Discrepancies {
		kindCounts[d.Kind]++
		rows = append(rows, models.SyncDiscrepancy{
			SessionID:     sessionID,
			Kind:          string(d.Kind),
			LocalID:       d.LocalID,
			ExternalID:    d.ExternalID,
			SKU:           d.SKU,
			Barcode:       d.Barcode,
			Brand:         d.Brand,
			Quantity:      d.Quantity,
			MissingFields: strings.Join(d.MissingFields, ","),
			CreatedAt:     now,
		})
	}

	errRows := make([]models.SyncError, 0, len(batch.Errors))
	for _, issue := range batch.Errors {
		errRows = append(errRows, models.SyncError{
			SessionID: sessionID,
			RecordRef: issue.RecordRef,
			Message:   issue.Message,
			CreatedAt: now,
		})
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"records_seen":    gorm.Expr("records_seen + ?", batch.Seen),
			"records_matched": gorm.Expr("records_matched + ?", batch.Matched),
			"records_missing": gorm.Expr("records_missing + ?", batch.Missing),
			"error_count":     gorm.Expr("error_count + ?", len(batch.Errors)),
		}
		if n := kindCounts[KindLowStock]; n > 0 {
			updates["low_stock_count"] = gorm.Expr("low_stock_count + ?", n)
		}
		if n := kindCounts[KindMissing]; n > 0 {
			updates["missing_count"] = gorm.Expr("missing_count + ?", n)
		}
		if n := kindCounts[KindUnpublished]; n > 0 {
			updates["unpublished_count"] = gorm.Expr("unpublished_count + ?", n)
		}

		result := tx.Model(&models.SyncSession{}).
			Where("id = ? AND status = ?", sessionID, string(StatusRunning)).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update session counters: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrSessionNotRunning
		}

		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, 200).Error; err != nil {
				return fmt.Errorf("failed to store discrepancies: %w", err)
			}
		}
		if len(errRows) > 0 {
			if err := tx.CreateInBatches(errRows, 200).Error; err != nil {
				return fmt.Errorf("failed to store record errors: %w", err)
			}
		}
		return nil
	})
}

// AppendError records a run-level error line against the session.
// Every error reaches the audit trail before the session turns terminal.
func (l *Ledger) AppendError(ctx context.Context, sessionID, recordRef, message string) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.SyncError{
			SessionID: sessionID,
			RecordRef: recordRef,
			Message:   message,
			CreatedAt: time.Now().UTC(),
		}).Error; err != nil {
			return fmt.Errorf("failed to store session error: %w", err)
		}
		return tx.Model(&models.SyncSession{}).
			Where("id = ?", sessionID).
			Update("error_count", gorm.Expr("error_count + 1")).Error
	})
}

// Finalize moves a RUNNING session to a terminal status. Transitions out of
// terminal states are refused: the audit record is immutable once finalized.
func (l *Ledger) Finalize(ctx context.Context, sessionID string, status SessionStatus, note string) error {
	if !status.Terminal() {
		return fmt.Errorf("cannot finalize session to non-terminal status %q", status)
	}

	now := time.Now().UTC()
	result := l.db.WithContext(ctx).Model(&models.SyncSession{}).
		Where("id = ? AND status = ?", sessionID, string(StatusRunning)).
		Updates(map[string]any{
			"status":      string(status),
			"finished_at": now,
			"note":        note,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to finalize session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotRunning
	}
	return nil
}

// Get loads one session by ID.
func (l *Ledger) Get(ctx context.Context, sessionID string) (*models.SyncSession, error) {
	var session models.SyncSession
	if err := l.db.WithContext(ctx).First(&session, "id = ?", sessionID).Error; err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return &session, nil
}

// List returns the most recent sessions, newest first.
func (l *Ledger) List(ctx context.Context, limit int) ([]models.SyncSession, error) {
	if limit <= 0 {
		limit = 50
	}
	var sessions []models.SyncSession
	err := l.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Discrepancies returns all discrepancy rows of a session in insertion order.
func (l *Ledger) Discrepancies(ctx context.Context, sessionID string) ([]models.SyncDiscrepancy, error) {
	var rows []models.SyncDiscrepancy
	err := l.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load discrepancies: %w", err)
	}
	return rows, nil
}

// Errors returns all error rows of a session in insertion order.
func (l *Ledger) Errors(ctx context.Context, sessionID string) ([]models.SyncError, error) {
	var rows []models.SyncError
	err := l.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load session errors: %w", err)
	}
	return rows, nil
}

