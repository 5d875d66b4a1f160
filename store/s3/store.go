/*
Package s3 provides an S3-backed implementation of generic.BlobStore.

PURPOSE:
  Each storage key maps to one object in a single bucket, under an
  optional prefix. Works with AWS S3 and S3-compatible servers (MinIO)
  through a custom endpoint and path-style addressing.

USAGE:
  store, err := s3.New(ctx, s3.Config{Bucket: "bentobox", Region: "eu-west-1"})
  board, err := bento.Load(ctx, store, generic.DefaultStoreKey)

SEE ALSO:
  - generic/store.go: Interface definition
  - store/sqlite/sqlite.go: Local file implementation
*/
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/warp/bentobox/generic"
)

// ObjectAPI is the subset of *s3.Client the store calls.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds construction parameters.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional; e.g. MinIO
	PathStyle bool
	Prefix    string // optional key prefix inside the bucket
}

// Store implements generic.BlobStore over one bucket.
type Store struct {
	client ObjectAPI
	bucket string
	prefix string
}

// New creates a store using the default AWS credential chain.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client ObjectAPI, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *Store) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

// Get returns the object body for key, or generic.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, generic.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %q: %w", key, err)
	}
	defer out.Body.Close()

	blob, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return blob, nil
}

// Put overwrites the object for key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(key)),
		Body:          bytes.NewReader(value),
		ContentLength: aws.Int64(int64(len(value))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put %q: %w", key, err)
	}
	return nil
}

var _ generic.BlobStore = (*Store)(nil)
