package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Destination receives exported objects.
type Destination interface {
	Write(ctx context.Context, key string, data []byte) error
	// Name labels the destination in metrics.
	Name() string
}

// DirDestination writes objects as files under a local directory.
type DirDestination struct {
	dir string
}

// NewDirDestination creates a directory destination. The directory is
// created on first write.
func NewDirDestination(dir string) *DirDestination {
	return &DirDestination{dir: dir}
}

// Name implements Destination.
func (d *DirDestination) Name() string { return "dir" }

// Write stores data at dir/key.
func (d *DirDestination) Write(_ context.Context, key string, data []byte) error {
	if !filepath.IsLocal(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	target := filepath.Join(d.dir, key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil { //nolint:gosec // exported charts are not secret
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// S3Destination writes objects to an S3-compatible bucket.
type S3Destination struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Destination creates an S3 destination. If endpoint is non-empty,
// path-style addressing is enabled (for MinIO and similar).
func NewS3Destination(ctx context.Context, bucket, prefix, region, endpoint string) (*S3Destination, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Destination{
		client: s3.NewFromConfig(cfg, s3opts...),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// Name implements Destination.
func (d *S3Destination) Name() string { return "s3" }

// Write uploads data as prefix/key.
func (d *S3Destination) Write(ctx context.Context, key string, data []byte) error {
	if !filepath.IsLocal(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(path.Join(d.prefix, key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(key)),
	})
	if err != nil {
		return fmt.Errorf("%w: s3 put object: %w", ErrWrite, err)
	}
	return nil
}

func contentType(key string) string {
	switch path.Ext(key) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	}
	return "application/octet-stream"
}
