package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	gosync "sync"

	"syncvision/core/storage"

	"github.com/minio/minio-go/v7"
)

const reportPrefix = "reports/"

// Archiver persists compiled session reports to object storage under
// reports/<session-id>.json. Uploads are idempotent: re-archiving a session
// overwrites the same object with identical content.
type Archiver struct {
	client storage.Client
	bucket string

	ensureOnce gosync.Once
	ensureErr  error
}

func NewArchiver(client storage.Client, bucket string) *Archiver {
	return &Archiver{client: client, bucket: bucket}
}

// ObjectName returns the archive key for a session.
func ObjectName(sessionID string) string {
	return reportPrefix + sessionID + ".json"
}

// Archive uploads the report as pretty-printed JSON and returns the object
// name. The bucket is created on first use.
func (a *Archiver) Archive(ctx context.Context, report ReportSummary) (string, error) {
	if err := a.ensureBucket(ctx); err != nil {
		return "", err
	}

	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	object := ObjectName(report.SessionID)
	_, err = a.client.PutObject(ctx, a.bucket, object,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", object, err)
	}
	return object, nil
}

// Fetch downloads and decodes an archived report.
func (a *Archiver) Fetch(ctx context.Context, sessionID string) (*ReportSummary, error) {
	object := ObjectName(sessionID)
	reader, err := a.client.GetObject(ctx, a.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report %s: %w", object, err)
	}
	defer reader.Close()

	payload, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", object, err)
	}

	var report ReportSummary
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", object, err)
	}
	return &report, nil
}

func (a *Archiver) ensureBucket(ctx context.Context) error {
	a.ensureOnce.Do(func() {
		exists, err := a.client.BucketExists(ctx, a.bucket)
		if err != nil {
			a.ensureErr = fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
			return
		}
		if exists {
			return
		}
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			a.ensureErr = fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
		}
	})
	return a.ensureErr
}
