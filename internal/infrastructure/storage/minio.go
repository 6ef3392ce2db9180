package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
	"github.com/johnquangdev/opportunity-notes/pkg/config"
)

// MinIOClient archives runs, transcripts and exports to an S3-compatible bucket
type MinIOClient struct {
	client *minio.Client
	store  putter
	bucket string
	logger *zap.Logger

	initialInterval time.Duration
	maxElapsed      time.Duration
}

// putter uploads one object
type putter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// NewMinIOClient creates a new MinIO client and makes sure the bucket exists
func NewMinIOClient(ctx context.Context, cfg *config.ArchiveConfig, logger *zap.Logger) (*MinIOClient, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	client := newArchiver(minioClient, cfg.BucketName, logger)
	client.client = minioClient

	if err := client.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}
	return client, nil
}

func newArchiver(store putter, bucket string, logger *zap.Logger) *MinIOClient {
	return &MinIOClient{
		store:           store,
		bucket:          bucket,
		logger:          logger,
		initialInterval: 500 * time.Millisecond,
		maxElapsed:      30 * time.Second,
	}
}

// ensureBucket creates the bucket when missing
func (m *MinIOClient) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// UploadBytes uploads data, retrying transient failures with exponential backoff
func (m *MinIOClient) UploadBytes(ctx context.Context, objectName string, data []byte, contentType string) error {
	attempt := 0
	upload := func() error {
		attempt++
		_, err := m.store.PutObject(ctx, m.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err != nil && m.logger != nil {
			m.logger.Warn("⚠️ Archive upload failed, retrying",
				zap.String("object", objectName),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = m.initialInterval
	bo.MaxInterval = 5 * m.initialInterval
	bo.MaxElapsedTime = m.maxElapsed

	if err := backoff.Retry(upload, backoff.WithContext(bo, ctx)); err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	return nil
}

// UploadText uploads text content
func (m *MinIOClient) UploadText(ctx context.Context, objectName string, content string) error {
	return m.UploadBytes(ctx, objectName, []byte(content), "text/plain; charset=utf-8")
}

// ArchiveRun stores the run JSON and each cleaned transcript under runs/<run_id>/
func (m *MinIOClient) ArchiveRun(ctx context.Context, run *entities.RunResult) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}
	prefix := "runs/" + run.RunID
	if err := m.UploadBytes(ctx, prefix+"/run.json", data, "application/json"); err != nil {
		return err
	}
	for i, t := range run.Transcripts {
		name := fmt.Sprintf("%s/transcripts/%02d_%s.txt", prefix, i, objectSafe(t.BaseName()))
		if err := m.UploadText(ctx, name, t.CleanedText); err != nil {
			return err
		}
	}
	if m.logger != nil {
		m.logger.Info("📦 Run archived", zap.String("run_id", run.RunID), zap.String("bucket", m.bucket))
	}
	return nil
}

// ArchiveExport stores a CSV export under exports/
func (m *MinIOClient) ArchiveExport(ctx context.Context, filename string, data []byte) error {
	return m.UploadBytes(ctx, "exports/"+objectSafe(path.Base(filename)), data, "text/csv")
}

func objectSafe(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" {
		return "transcript"
	}
	return strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(name)
}
