package publish

import (
	"context"
	"path/filepath"

	"csvpack/internal/fsio"
)

var _ Publisher = (*Dir)(nil)

// Dir publishes into a local directory.
type Dir struct {
	root string
	fs   fsio.Writer
}

// NewDir creates a directory publisher rooted at root.
func NewDir(root string) *Dir {
	return &Dir{root: root, fs: fsio.OS{}}
}

// Put writes one file below the root.
func (p *Dir) Put(ctx context.Context, key string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.fs.WriteFile(filepath.Join(p.root, filepath.FromSlash(key)), data)
}

// Location returns the file:// URL of the root.
func (p *Dir) Location() string {
	return "file://" + filepath.ToSlash(p.root)
}
