package sync_test

import (
	"context"
	"errors"
	"testing"

	"syncvision/feature/sync"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestBeginPropagatesDatabaseError(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	ledger := sync.NewLedger(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count").WillReturnError(errors.New("connection lost"))
	mock.ExpectRollback()

	_, err := ledger.Begin(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection lost")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordBatchPropagatesDatabaseError(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	ledger := sync.NewLedger(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `sync_sessions`").WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	err := ledger.RecordBatch(context.Background(), "s-1", sync.BatchResult{Seen: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadlock")
	assert.NoError(t, mock.ExpectationsWereMet())
}
