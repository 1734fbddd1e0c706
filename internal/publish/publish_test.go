package publish

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"diamond-dashboard/internal/config"
	"diamond-dashboard/internal/dashboard"
	"diamond-dashboard/internal/models"
	"diamond-dashboard/internal/store"
)

type fakeStore struct {
	exists    bool
	existsErr error
	putErr    error

	made    []string
	objects map[string][]byte
	types   map[string]string
}

func newFakeStore(exists bool) *fakeStore {
	return &fakeStore{exists: exists, objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeStore) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	f.made = append(f.made, bucket)
	f.exists = true
	return nil
}

func (f *fakeStore) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[bucket+"/"+key] = data
	f.types[key] = opts.ContentType
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size}, nil
}

func testApp() *dashboard.App {
	return dashboard.New(&models.Dataset{Mines: store.SampleMines()})
}

func newPublisher(fs *fakeStore) *Publisher {
	p := New(fs, config.PublishConfig{Bucket: "snapshots-test"}, zap.NewNop())
	p.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }
	return p
}

func TestSnapshotKey(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	got := SnapshotKey(time.Date(2026, 3, 1, 11, 30, 5, 0, loc))
	assert.Equal(t, "snapshots/20260301T093005Z/index.html", got)
}

func TestPublishCreatesBucket(t *testing.T) {
	fs := newFakeStore(false)
	key, err := newPublisher(fs).Publish(context.Background(), testApp(), "Diamond Project")
	require.NoError(t, err)

	assert.Equal(t, "snapshots/20260301T093000Z/index.html", key)
	assert.Equal(t, []string{"snapshots-test"}, fs.made)
	assert.Equal(t, "text/html; charset=utf-8", fs.types[key])

	body := string(fs.objects["snapshots-test/"+key])
	assert.Contains(t, body, "<title>Diamond Project</title>")
	assert.Regexp(t, `STATIC_PAGE =\s*true`, body)
}

func TestPublishExistingBucket(t *testing.T) {
	fs := newFakeStore(true)
	_, err := newPublisher(fs).Publish(context.Background(), testApp(), "t")
	require.NoError(t, err)
	assert.Empty(t, fs.made)
	assert.Len(t, fs.objects, 1)
}

func TestPublishErrors(t *testing.T) {
	fs := newFakeStore(false)
	fs.existsErr = errors.New("connection refused")
	_, err := newPublisher(fs).Publish(context.Background(), testApp(), "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	fs = newFakeStore(true)
	fs.putErr = errors.New("access denied")
	_, err = newPublisher(fs).Publish(context.Background(), testApp(), "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestNewClient(t *testing.T) {
	c, err := NewClient(config.PublishConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", c.EndpointURL().Host)
}
