// Package objectstore keeps processed photos in an S3 compatible bucket through MinIO.
package objectstore

import (
	"bytes"
	"context"
	"io"
	"mime"
	"path"

	"github.com/code19m/errx"
	"github.com/go-playground/validator/v10"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sngm3741/store-finder/api/internal/infrastructure/filesystem"
)

const codeNoSuchKey = "NoSuchKey"

// Config defines the connection to the bucket.
type Config struct {
	Endpoint  string `validate:"required"`
	AccessKey string `validate:"required"`
	SecretKey string `validate:"required"`
	Bucket    string `validate:"required"`
	UseSSL    bool
}

// PhotoStorage implements photo persistence on MinIO. PutObject only makes the
// object visible once the upload completes, so no partial photo is ever readable.
type PhotoStorage struct {
	client *minio.Client
	bucket string
}

// New validates cfg and creates the client. It does not contact the server.
func New(cfg Config) (*PhotoStorage, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, errx.Wrap(err, errx.WithType(errx.T_Validation))
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return &PhotoStorage{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *PhotoStorage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return errx.Wrap(err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return errx.Wrap(err)
	}
	return nil
}

func (s *PhotoStorage) Save(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType(name),
	})
	if err != nil {
		return errx.Wrap(err)
	}
	return nil
}

func (s *PhotoStorage) Delete(ctx context.Context, name string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return errx.Wrap(err)
	}
	return nil
}

// Open streams the object. Missing keys map to filesystem.CodePhotoNotFound so
// the HTTP layer treats both backends alike.
func (s *PhotoStorage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.wrapMinioError(err)
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, s.wrapMinioError(err)
	}
	return obj, nil
}

func (s *PhotoStorage) wrapMinioError(err error) error {
	if minio.ToErrorResponse(err).Code == codeNoSuchKey {
		return errx.New("photo not found", errx.WithCode(filesystem.CodePhotoNotFound), errx.WithType(errx.T_NotFound))
	}
	return errx.Wrap(err)
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
