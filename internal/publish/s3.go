package publish

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"csvpack/internal/config"
)

var _ Publisher = (*S3)(nil)

// S3 publishes to an S3-compatible bucket.
type S3 struct {
	client *s3.Client
	target Target
}

// NewS3 creates an S3 publisher. Without a key id requests go out unsigned.
func NewS3(target Target, cfg config.S3Config) *S3 {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.PathStyle,
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}
	if cfg.KeyID != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.KeyID, cfg.Secret, "")
	} else {
		opts.Credentials = aws.AnonymousCredentials{}
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return &S3{client: s3.New(opts), target: target}
}

// Put uploads one object.
func (p *S3) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.target.Bucket),
		Key:         aws.String(p.target.Key(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 PutObject %q: %w", p.target.Key(key), err)
	}
	return nil
}

// Location returns the s3:// URL objects land under.
func (p *S3) Location() string {
	return "s3://" + p.target.Bucket + "/" + p.target.Prefix
}
