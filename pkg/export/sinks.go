package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// FileSink writes to a local file, creating parent directories.
type FileSink struct {
	Path string
}

// Put writes body to the file, replacing it.
func (f *FileSink) Put(_ context.Context, body []byte, _ string) error {
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(f.Path, body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.Path, err)
	}
	return nil
}

// Location returns the file path.
func (f *FileSink) Location() string {
	return f.Path
}

// PutObjectAPI is the subset of *s3.Client used by S3Sink.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads to one S3 object.
type S3Sink struct {
	client PutObjectAPI
	Bucket string
	Key    string
}

// NewS3Sink loads the default AWS configuration (environment, shared
// config, instance role) and targets bucket/key. S3_REGION overrides the
// region when set.
func NewS3Sink(ctx context.Context, bucket, key string) (*S3Sink, error) {
	var opts []func(*config.LoadOptions) error
	if region := os.Getenv("S3_REGION"); region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return NewS3SinkWithClient(s3.NewFromConfig(cfg), bucket, key), nil
}

// NewS3SinkWithClient targets bucket/key through an existing client.
func NewS3SinkWithClient(client PutObjectAPI, bucket, key string) *S3Sink {
	return &S3Sink{client: client, Bucket: bucket, Key: key}
}

// Put uploads body as the object.
func (s *S3Sink) Put(ctx context.Context, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(s.Key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to s3://%s/%s: %w", s.Bucket, s.Key, err)
	}
	return nil
}

// Location returns the s3:// URL of the object.
func (s *S3Sink) Location() string {
	return "s3://" + s.Bucket + "/" + s.Key
}
