// Package archive copies raw portal responses and diagnostic dumps to
// durable object storage.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/JustJay7/ecourts-fetcher/internal/config"
	"github.com/JustJay7/ecourts-fetcher/pkg/logger"
)

// Archiver stores one object under key
type Archiver interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
}

// Nop discards everything. Used when no bucket is configured.
type Nop struct{}

func (Nop) Put(context.Context, string, string, []byte) error { return nil }

// objectPutter is the part of *s3.Client the archiver needs
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 uploads objects to a bucket under a fixed prefix
type S3 struct {
	client objectPutter
	bucket string
	prefix string
}

// NewS3 builds an archiver from the default AWS credential chain
func NewS3(ctx context.Context, region, bucket, prefix string) (*S3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws configuration: %w", err)
	}
	return &S3{client: s3.NewFromConfig(cfg), bucket: bucket, prefix: prefix}, nil
}

// Put implements Archiver
func (a *S3) Put(ctx context.Context, key, contentType string, body []byte) error {
	if contentType == "" {
		contentType = contentTypeFor(key)
	}
	fullKey := path.Join(a.prefix, key)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(fullKey),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to s3://%s: %w", fullKey, a.bucket, err)
	}
	return nil
}

// New returns an S3 archiver when a bucket is configured, Nop otherwise
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (Archiver, error) {
	if cfg.S3Bucket == "" {
		log.Debug("No S3 bucket configured, archiving disabled")
		return Nop{}, nil
	}
	a, err := NewS3(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3Prefix)
	if err != nil {
		return nil, err
	}
	log.Info("Archiving to S3", "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix)
	return a, nil
}

// QueryKey is where the raw response of a logged query is archived
func QueryKey(queryID uint) string {
	return path.Join("queries", strconv.FormatUint(uint64(queryID), 10)+".html")
}

// DebugKey is where a diagnostic dump file is archived
func DebugKey(fileName string) string {
	return path.Join("debug", filepath.Base(fileName))
}

// contentTypeFor guesses a MIME type from the key's extension
func contentTypeFor(key string) string {
	if t := mime.TypeByExtension(path.Ext(key)); t != "" {
		return t
	}
	return "application/octet-stream"
}
