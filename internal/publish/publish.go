// Package publish uploads compiled artifacts to object storage or a local
// directory.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"csvpack/internal/config"
)

// Publisher stores objects under a fixed location.
type Publisher interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Location() string
}

// Object is one file to publish.
type Object struct {
	Key  string
	Data []byte
}

// Target is a parsed publish URL.
type Target struct {
	Scheme string // s3, gs, az or file
	Bucket string // bucket or container; empty for file targets
	Prefix string // key prefix without leading or trailing slash; a directory for file targets
}

// ParseTarget parses s3://bucket/prefix, gs://bucket/prefix,
// az://container/prefix or file:///dir.
func ParseTarget(raw string) (Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("parse publish target %q: %w", raw, err)
	}
	switch u.Scheme {
	case "s3", "gs", "az":
		if u.Host == "" {
			return Target{}, fmt.Errorf("publish target %q has no bucket", raw)
		}
		return Target{Scheme: u.Scheme, Bucket: u.Host, Prefix: strings.Trim(u.Path, "/")}, nil
	case "file":
		dir := u.Path
		if u.Host != "" {
			dir = filepath.Join(u.Host, u.Path) // file://relative/dir
		}
		if dir == "" {
			return Target{}, fmt.Errorf("publish target %q has no directory", raw)
		}
		return Target{Scheme: "file", Prefix: dir}, nil
	default:
		return Target{}, fmt.Errorf("unsupported publish scheme %q in %q (want s3, gs, az or file)", u.Scheme, raw)
	}
}

// Key joins the target prefix and a relative object key.
func (t Target) Key(key string) string {
	if t.Prefix == "" {
		return key
	}
	return path.Join(t.Prefix, key)
}

// New creates the Publisher for cfg.Target.
func New(ctx context.Context, cfg config.PublishConfig) (Publisher, error) {
	target, err := ParseTarget(cfg.Target)
	if err != nil {
		return nil, err
	}
	switch target.Scheme {
	case "s3":
		return NewS3(target, cfg.S3), nil
	case "gs":
		return NewGCS(ctx, target, cfg.GCS)
	case "az":
		return NewAzure(target, cfg.Azure)
	default:
		return NewDir(target.Prefix), nil
	}
}

// === Content Types ===

var contentTypes = map[string]string{
	".go":      "text/x-go; charset=utf-8",
	".yaml":    "application/yaml",
	".strings": "text/plain; charset=utf-8",
	".dat":     "application/octet-stream",
}

// ContentType returns the content type stored with key.
func ContentType(key string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(key))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ObjectKey turns an artifact path into a slash-separated key relative to
// root. Paths outside root keep only their base name.
func ObjectKey(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(p)
	}
	return filepath.ToSlash(rel)
}

// All uploads objects with at most concurrency uploads in flight. The first
// failure cancels the rest.
func All(ctx context.Context, p Publisher, objects []Object, concurrency int, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, obj := range objects {
		g.Go(func() error {
			if err := p.Put(gctx, obj.Key, obj.Data, ContentType(obj.Key)); err != nil {
				return fmt.Errorf("publish %s to %s: %w", obj.Key, p.Location(), err)
			}
			logger.Debug("object published", "key", obj.Key, "bytes", len(obj.Data))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("artifacts published", "location", p.Location(), "objects", len(objects))
	return nil
}
