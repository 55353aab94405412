package sync_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"syncvision/core/storage/mocks"
	"syncvision/feature/sync"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestArchiveUploadsReport(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "syncvision").Return(true, nil)

	var uploaded []byte
	client.On("PutObject", mock.Anything, "syncvision", "reports/s-1.json",
		mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			body, err := io.ReadAll(args.Get(3).(io.Reader))
			require.NoError(t, err)
			uploaded = body
		}).
		Return(minio.UploadInfo{}, nil)

	archiver := sync.NewArchiver(client, "syncvision")
	report := sync.ReportSummary{
		SessionID: "s-1",
		Status:    string(sync.StatusSucceeded),
		StartedAt: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	}

	object, err := archiver.Archive(context.Background(), report)
	require.NoError(t, err)
	assert.Equal(t, "reports/s-1.json", object)

	var decoded sync.ReportSummary
	require.NoError(t, json.Unmarshal(uploaded, &decoded))
	assert.Equal(t, "s-1", decoded.SessionID)

	client.AssertExpectations(t)
}

func TestArchiveCreatesMissingBucket(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "reports").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "reports", mock.Anything).Return(nil)
	client.On("PutObject", mock.Anything, "reports", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	archiver := sync.NewArchiver(client, "reports")

	_, err := archiver.Archive(context.Background(), sync.ReportSummary{SessionID: "a"})
	require.NoError(t, err)

	// The bucket check happens once per archiver, not per upload
	_, err = archiver.Archive(context.Background(), sync.ReportSummary{SessionID: "b"})
	require.NoError(t, err)

	client.AssertNumberOfCalls(t, "BucketExists", 1)
	client.AssertNumberOfCalls(t, "PutObject", 2)
}

func TestFetchDecodesArchivedReport(t *testing.T) {
	report := sync.ReportSummary{SessionID: "s-2", Status: string(sync.StatusFailed)}
	payload, err := json.Marshal(report)
	require.NoError(t, err)

	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "syncvision", "reports/s-2.json", mock.Anything).
		Return(io.NopCloser(bytes.NewReader(payload)), nil)

	archiver := sync.NewArchiver(client, "syncvision")

	got, err := archiver.Fetch(context.Background(), "s-2")
	require.NoError(t, err)
	assert.Equal(t, "s-2", got.SessionID)
	assert.Equal(t, string(sync.StatusFailed), got.Status)
}
