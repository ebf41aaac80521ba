package publish

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"csvpack/internal/config"
)

var _ Publisher = (*GCS)(nil)

// GCS publishes to a Google Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	target Target
}

// NewGCS creates a GCS publisher. An empty key file uses application
// default credentials.
func NewGCS(ctx context.Context, target Target, cfg config.GCSConfig) (*GCS, error) {
	var opts []option.ClientOption
	if cfg.KeyFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, cfg.KeyFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &GCS{client: client, target: target}, nil
}

// Put uploads one object.
func (p *GCS) Put(ctx context.Context, key string, data []byte, contentType string) error {
	name := p.target.Key(key)
	w := p.client.Bucket(p.target.Bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs write %q: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs close %q: %w", name, err)
	}
	return nil
}

// Location returns the gs:// URL objects land under.
func (p *GCS) Location() string {
	return "gs://" + p.target.Bucket + "/" + p.target.Prefix
}
