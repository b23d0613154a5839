package diagnostics

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ObjectPutter is the subset of the MinIO client used for archiving.
type ObjectPutter interface {
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Options configures an S3-compatible archive target.
type S3Options struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Prefix    string
}

// Archiver copies diagnostics files to S3-compatible storage, one
// timestamped object per run.
type Archiver struct {
	client ObjectPutter
	bucket string
	prefix string
	now    func() time.Time
}

// NewArchiver creates an Archiver over an existing client.
func NewArchiver(client ObjectPutter, bucket, prefix string) *Archiver {
	return &Archiver{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// NewS3Archiver connects to the configured endpoint.
func NewS3Archiver(opts S3Options) (*Archiver, error) {
	if opts.Endpoint == "" || opts.Bucket == "" {
		return nil, eris.New("diagnostics: s3 endpoint and bucket are required")
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, eris.Wrap(err, "diagnostics: create s3 client")
	}
	return NewArchiver(client, opts.Bucket, opts.Prefix), nil
}

// ObjectKey returns the object name used for a file archived at t.
func (a *Archiver) ObjectKey(category, file string, t time.Time) string {
	name := t.UTC().Format("20060102T150405Z") + "-" + filepath.Base(file)
	return path.Join(a.prefix, category, name)
}

// Archive uploads file and returns its object key.
func (a *Archiver) Archive(ctx context.Context, category, file string) (string, error) {
	if _, err := os.Stat(file); err != nil {
		return "", eris.Wrapf(err, "diagnostics: stat %s", file)
	}

	key := a.ObjectKey(category, file, a.now())
	info, err := a.client.FPutObject(ctx, a.bucket, key, file, minio.PutObjectOptions{
		ContentType: contentType(file),
	})
	if err != nil {
		return "", eris.Wrapf(err, "diagnostics: upload %s", key)
	}

	zap.L().Info("diagnostics archived",
		zap.String("bucket", a.bucket),
		zap.String("key", key),
		zap.Int64("size", info.Size),
	)
	return key, nil
}

func contentType(file string) string {
	switch filepath.Ext(file) {
	case ".json":
		return "application/json"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
