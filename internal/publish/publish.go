// Package publish uploads static snapshots of the dashboard page to
// S3-compatible object storage.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"diamond-dashboard/internal/config"
	"diamond-dashboard/internal/dashboard"
	"diamond-dashboard/internal/page"
)

// ObjectStore is the part of *minio.Client the publisher uses.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// NewClient connects to the configured endpoint.
func NewClient(cfg config.PublishConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return client, nil
}

type Publisher struct {
	store  ObjectStore
	bucket string
	region string
	log    *zap.Logger
	now    func() time.Time
}

func New(store ObjectStore, cfg config.PublishConfig, log *zap.Logger) *Publisher {
	return &Publisher{
		store:  store,
		bucket: cfg.Bucket,
		region: cfg.Region,
		log:    log,
		now:    time.Now,
	}
}

// SnapshotKey is the object key for a snapshot taken at t.
func SnapshotKey(t time.Time) string {
	return fmt.Sprintf("snapshots/%s/%s", t.UTC().Format("20060102T150405Z"), page.Name)
}

// Publish renders a static page showing every mine and uploads it. It
// returns the object key.
func (p *Publisher) Publish(ctx context.Context, app *dashboard.App, title string) (string, error) {
	d := page.NewData(title, app.Countries(), nil, app.Figures())
	d.Static = true

	var buf bytes.Buffer
	if err := page.Render(&buf, d); err != nil {
		return "", fmt.Errorf("render snapshot: %w", err)
	}

	if err := p.ensureBucket(ctx); err != nil {
		return "", err
	}

	key := SnapshotKey(p.now())
	_, err := p.store.PutObject(ctx, p.bucket, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()),
		minio.PutObjectOptions{ContentType: "text/html; charset=utf-8"})
	if err != nil {
		return "", fmt.Errorf("failed to store snapshot in S3: %w", err)
	}

	p.log.Info("Snapshot published",
		zap.String("bucket", p.bucket),
		zap.String("key", key),
		zap.Int("bytes", buf.Len()))
	return key, nil
}

func (p *Publisher) ensureBucket(ctx context.Context) error {
	exists, err := p.store.BucketExists(ctx, p.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := p.store.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: p.region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", p.bucket, err)
	}
	p.log.Info("Created bucket", zap.String("bucket", p.bucket))
	return nil
}
